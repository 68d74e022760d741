package app

import (
	"github.com/go-chi/chi/v5"

	linkhandler "github.com/ekipchirchir/instatransfer/internal/handler/link"
	"github.com/ekipchirchir/instatransfer/internal/handler/middleware"
	settlementhandler "github.com/ekipchirchir/instatransfer/internal/handler/settlement"
	transactionhandler "github.com/ekipchirchir/instatransfer/internal/handler/transaction"
	userhandler "github.com/ekipchirchir/instatransfer/internal/handler/user"
	wshandler "github.com/ekipchirchir/instatransfer/internal/handler/ws"
	"github.com/ekipchirchir/instatransfer/internal/service"
)

func (app *App) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.WithAuth(app.Config))

	userService := service.NewUserService(app.store, app.Config)
	userHandler := userhandler.New(userService)

	transactionService := service.NewTransactionService(app.store)
	transactionHandler := transactionhandler.New(transactionService, app.Config)

	linkService := service.NewLinkService(app.store, app.gateway, app.Config)
	linkHandler := linkhandler.New(linkService, app.Config)

	settlementHandler := settlementhandler.New(transactionService, app.Config)

	sessionHandler := wshandler.New(app.hub, app.store, app.Config)

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", userHandler.Signup)
		r.Post("/login", userHandler.Login)
		r.Post("/logout", userHandler.Logout)
		r.Get("/user", userHandler.Me)

		r.Get("/transactions", transactionHandler.Transactions)
		r.Post("/deposit", transactionHandler.Deposit)
		r.Post("/withdraw", transactionHandler.Withdraw)

		r.Post("/link/complete", linkHandler.Complete)
		r.Post("/settlements", settlementHandler.Settle)

		r.Get("/ws", sessionHandler.Attach)
	})

	r.Get("/auth/deriv", linkHandler.Authorize)
	r.Get("/callback", linkHandler.Callback)

	return r
}
