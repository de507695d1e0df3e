package echo

import e "github.com/labstack/echo/v4"

func RegisterRoutes(server *e.Echo, clientImport *ClientImportHandler) {
	clients := server.Group("/api/v1/clients", ScopeMiddleware())
	clients.POST("/import/preview", clientImport.Preview)
	clients.POST("/import/simulate", clientImport.Simulate)
	clients.POST("/import/upload", clientImport.Upload)
	clients.POST("/import", clientImport.Import)
}
