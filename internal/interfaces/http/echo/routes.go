package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(
	server *e.Echo,
	uploads *UploadHandler,
	jobs *JobHandler,
	progress *ProgressHandler,
	catalog *CatalogHandler,
	workflows *WorkflowHandler,
	oauth *OAuthHandler,
) {
	v1 := server.Group("/api/v1")

	locations := v1.Group("/locations/:locationId")
	locations.POST("/uploads", uploads.Upload)
	locations.GET("/jobs", jobs.ListJobs)
	locations.GET("/progress", progress.Stream)
	locations.GET("/custom-fields", catalog.ListCustomFields)
	locations.GET("/tags", catalog.ListTags)

	workflowGroup := v1.Group("/workflows")
	workflowGroup.POST("/dnd", workflows.MarkDND)
	workflowGroup.POST("/delete", workflows.Delete)

	oauthGroup := v1.Group("/oauth")
	oauthGroup.GET("/callback", oauth.Callback)
	oauthGroup.POST("/app-installed", oauth.AppInstalled)
	oauthGroup.POST("/refresh-company/:id", oauth.RefreshCompanyToken)
	oauthGroup.POST("/refresh-location/:id", oauth.RefreshLocationToken)
}
