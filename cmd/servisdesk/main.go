package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/servisdesk/internal/audit"
	"github.com/smallbiznis/servisdesk/internal/clock"
	"github.com/smallbiznis/servisdesk/internal/config"
	"github.com/smallbiznis/servisdesk/internal/customer"
	"github.com/smallbiznis/servisdesk/internal/device"
	"github.com/smallbiznis/servisdesk/internal/invoice"
	"github.com/smallbiznis/servisdesk/internal/job"
	"github.com/smallbiznis/servisdesk/internal/logger"
	"github.com/smallbiznis/servisdesk/internal/migration"
	"github.com/smallbiznis/servisdesk/internal/numbering"
	"github.com/smallbiznis/servisdesk/internal/payment"
	"github.com/smallbiznis/servisdesk/internal/providers/pdf"
	"github.com/smallbiznis/servisdesk/internal/quotation"
	"github.com/smallbiznis/servisdesk/internal/receipt"
	"github.com/smallbiznis/servisdesk/internal/scheduler"
	"github.com/smallbiznis/servisdesk/internal/seed"
	"github.com/smallbiznis/servisdesk/internal/server"
	"github.com/smallbiznis/servisdesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domains
		numbering.Module,
		audit.Module,
		customer.Module,
		device.Module,
		job.Module,
		quotation.Module,
		invoice.Module,
		payment.Module,
		receipt.Module,

		// Providers and background work
		pdf.Module,
		scheduler.Module,
		seed.Module,

		// HTTP surface
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}
