package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every HTTP handler the API serves.
type Handlers struct {
	Roster     *RosterHandler
	Ledger     *LedgerHandler
	Dashboard  *DashboardHandler
	History    *HistoryHandler
	Attendance *AttendanceHandler
	Behavior   *BehaviorHandler
	SchoolYear *SchoolYearHandler
	Avatar     *AvatarHandler
	Export     *ExportHandler
}

// RegisterRoutes mounts every API route under /api/v1.
func RegisterRoutes(r *gin.Engine, h Handlers) {
	v1 := r.Group("/api/v1")

	v1.GET("/teams", h.Roster.ListTeams)
	v1.POST("/teams", h.Roster.CreateTeam)
	v1.PUT("/teams/:id", h.Roster.UpdateTeam)
	v1.DELETE("/teams/:id", h.Roster.DeleteTeam)

	v1.POST("/students", h.Roster.CreateStudent)
	v1.POST("/students/bulk", h.Roster.CreateStudents)
	v1.PUT("/students/:id", h.Roster.UpdateStudent)
	v1.DELETE("/students/:id", h.Roster.DeleteStudent)

	v1.POST("/students/:id/points", h.Ledger.ApplyPoints)
	v1.POST("/points/batch", h.Ledger.ApplyPointsBatch)
	v1.POST("/scores/reset", h.Ledger.Reset)

	v1.GET("/dashboard/leaderboard", h.Dashboard.Leaderboard)
	v1.GET("/dashboard/hall-of-fame", h.Dashboard.HallOfFame)
	v1.GET("/watchlist", h.Dashboard.Watchlist)

	v1.GET("/history", h.History.List)
	v1.GET("/history/export", h.History.Export)

	v1.GET("/attendance/:date", h.Attendance.Sheet)
	v1.PUT("/attendance/:date", h.Attendance.Save)

	v1.GET("/behaviors", h.Behavior.List)
	v1.POST("/behaviors", h.Behavior.Create)
	v1.PUT("/behaviors/:id", h.Behavior.Update)
	v1.DELETE("/behaviors/:id", h.Behavior.Delete)

	v1.GET("/school-years", h.SchoolYear.List)
	v1.POST("/school-years", h.SchoolYear.Create)
	v1.PUT("/school-years/:id", h.SchoolYear.Update)
	v1.DELETE("/school-years/:id", h.SchoolYear.Delete)
	v1.POST("/school-years/:id/activate", h.SchoolYear.Activate)

	v1.GET("/avatars", h.Avatar.List)
	v1.POST("/avatars", h.Avatar.Create)
	v1.DELETE("/avatars/:id", h.Avatar.Delete)

	v1.POST("/exports", h.Export.Create)
	v1.GET("/exports/:id", h.Export.Status)
	v1.GET("/exports/download/:token", h.Export.Download)
}
