package handler

import "github.com/gin-gonic/gin"

// Handlers groups the API handlers mounted under the API prefix.
type Handlers struct {
	Teachers *TeacherHandler
	Students *StudentHandler
	Lessons  *LessonScheduleHandler
	Sync     *SyncHandler
}

// Register mounts every API route on group.
func (h Handlers) Register(group gin.IRouter) {
	if h.Teachers != nil {
		teachers := group.Group("/teachers")
		teachers.GET("", h.Teachers.List)
		teachers.POST("", h.Teachers.Create)
		teachers.GET("/export", h.Teachers.Export)
		teachers.GET("/:id", h.Teachers.Get)
		teachers.PUT("/:id", h.Teachers.Update)
		teachers.DELETE("/:id", h.Teachers.Delete)
	}

	if h.Students != nil {
		students := group.Group("/students")
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		students.GET("/next-code", h.Students.NextCode)
		students.GET("/export", h.Students.Export)
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", h.Students.Delete)
	}

	if h.Lessons != nil {
		lessons := group.Group("/lesson-schedules")
		lessons.GET("", h.Lessons.List)
		lessons.POST("", h.Lessons.Create)
		lessons.POST("/recurring", h.Lessons.CreateRecurring)
		lessons.GET("/:id", h.Lessons.Get)
		lessons.PUT("/:id", h.Lessons.Update)
		lessons.DELETE("/:id", h.Lessons.Delete)
		lessons.POST("/:id/complete", h.Lessons.Complete)
		lessons.POST("/:id/renew", h.Lessons.Renew)
		lessons.POST("/:id/deactivate", h.Lessons.Deactivate)
	}

	if h.Sync != nil {
		sync := group.Group("/sync")
		sync.POST("/students/pull", h.Sync.PullStudents)
		sync.POST("/teachers/pull", h.Sync.PullTeachers)
	}
}
