package server

import (
	"html/template"
	"log/slog"
	"net/http"
	"slices"

	"maint-logbook/internal/config"
	"maint-logbook/internal/handlers"
	"maint-logbook/internal/middleware"
	"maint-logbook/internal/models"
	"maint-logbook/internal/service"
	"maint-logbook/web"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const sessionName = "logbook_session"

func maskEmail(email string) string {
	runes := []rune(email)
	atIdx := -1
	for i, r := range runes {
		if r == '@' {
			atIdx = i
			break
		}
	}
	if atIdx <= 0 {
		return "***"
	}
	if atIdx <= 2 {
		return string(runes[:atIdx]) + "***" + string(runes[atIdx:])
	}
	return string(runes[:2]) + "***" + string(runes[atIdx:])
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.NewTokenHeader, middleware.RequestIDHeader},
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func NewRouter(cfg *config.Config, db *gorm.DB, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg.Server.CORSOrigins)))

	tmpl := template.Must(template.New("").
		Funcs(template.FuncMap{"maskEmail": maskEmail}).
		ParseFS(web.Templates, "templates/*.html"))
	r.SetHTMLTemplate(tmpl)

	store := cookie.NewStore([]byte(cfg.Server.SessionSecret))
	store.Options(sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode, MaxAge: int(cfg.TokenTTL().Seconds())})
	r.Use(sessions.Sessions(sessionName, store))

	tokens := middleware.NewTokenIssuer(cfg.Server.JWTSecret, cfg.TokenTTL())

	users := service.NewUserService(db)
	logs := service.NewDailyLogService(db)
	circ := service.NewCirculationService(db)

	authH := handlers.NewAuthHandler(users, tokens)
	userH := handlers.NewUserHandler(users)
	logH := handlers.NewDailyLogHandler(logs, circ)
	routeH := handlers.NewRouteHandler(circ)
	equipH := handlers.NewEquipmentHandler(service.NewEquipmentService(db))
	projH := handlers.NewConstructionHandler(service.NewConstructionService(db))
	reportH := handlers.NewReportHandler(service.NewReportService(db))
	tmplH := handlers.NewTemplateHandler(service.NewTemplateService(db))
	auditH := handlers.NewAuditHandler(service.NewAuditService(db))

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// СТРАНИЦЫ
	pages := r.Group("/", middleware.InjectUser(db))
	pages.GET("/register", authH.ShowRegister)
	pages.POST("/register", authH.Register)
	pages.GET("/login", authH.ShowLogin)
	pages.POST("/login", authH.Login)
	pages.GET("/logout", authH.Logout)
	pages.GET("/", middleware.RequireAuth(), handlers.IndexPage)

	// API
	api := r.Group("/api")
	api.POST("/register", authH.APIRegister)
	api.POST("/login", authH.APILogin)
	api.POST("/logout", authH.APILogout)

	auth := api.Group("", middleware.RequireAPIAuth(tokens))
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	auth.GET("/me", authH.Me)
	auth.GET("/users", userH.List)

	// ЖУРНАЛЫ И СОГЛАСОВАНИЕ
	auth.GET("/daily-logs/month/:yearMonth", logH.ListMonth)
	auth.GET("/daily-logs/:date", logH.Get)
	auth.POST("/daily-logs/:date", logH.Create)
	auth.PUT("/daily-logs/:date", logH.Update)
	auth.POST("/daily-logs/:date/circulation", logH.StartCirculation)
	auth.PUT("/daily-logs/:date/circulation", logH.Decide)

	auth.GET("/circulation-routes", routeH.List)
	auth.POST("/circulation-routes", routeH.Create)

	// ОБОРУДОВАНИЕ
	auth.GET("/equipment", equipH.List)
	auth.POST("/equipment", equipH.Create)
	auth.GET("/equipment/:id", equipH.Get)
	auth.PUT("/equipment/:id", equipH.Update)
	auth.DELETE("/equipment/:id", adminOnly, equipH.Delete)
	auth.POST("/equipment/:id/parts", equipH.AddPart)
	auth.POST("/equipment/:id/inspections", equipH.AddInspection)

	// РАБОТЫ И ОТЧЁТЫ
	auth.GET("/construction", projH.List)
	auth.POST("/construction", projH.Create)
	auth.POST("/construction/report", reportH.Create)
	auth.GET("/construction/report/:id", reportH.Get)
	auth.GET("/construction/:id", projH.Get)
	auth.PUT("/construction/:id", projH.Update)
	auth.DELETE("/construction/:id", adminOnly, projH.Delete)

	// ШАБЛОНЫ ОСМОТРА
	auth.GET("/inspection-templates", tmplH.List)
	auth.POST("/inspection-templates", tmplH.Create)
	auth.GET("/inspection-templates/:id", tmplH.Get)
	auth.PUT("/inspection-templates/:id", tmplH.Update)
	auth.DELETE("/inspection-templates/:id", adminOnly, tmplH.Delete)

	// АУДИТ
	auth.GET("/audit", adminOnly, auditH.List)

	return r
}
