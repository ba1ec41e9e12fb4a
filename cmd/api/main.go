package main

import (
	"context"

	"github.com/alecthomas/kong"

	"tablereservations/cmd/api/internal/commands"
	_ "tablereservations/docs"
)

var (
	version = "dev"
	cli     struct {
		Version     kong.VersionFlag
		Serve       commands.ServeCmd       `cmd:"" default:"1" help:"Start the HTTP API (default)."`
		Migrate     commands.MigrateCmd     `cmd:"" help:"Apply or roll back database migrations."`
		CreateAdmin commands.CreateAdminCmd `cmd:"" name:"create-admin" help:"Create an admin account."`
	}
)

// @title Table Reservations API
// @version 1.0
// @description Table allocation, customer self-service and admin management for a single restaurant.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the admin token.
func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("tablereservations"),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Version: version})
	cmd.FatalIfErrorf(err)
}
