// Package seed inserts a small demo data set for local evaluation.
package seed

import (
	"context"

	"github.com/smallbiznis/servisdesk/internal/config"
	customerdomain "github.com/smallbiznis/servisdesk/internal/customer/domain"
	devicedomain "github.com/smallbiznis/servisdesk/internal/device/domain"
	jobdomain "github.com/smallbiznis/servisdesk/internal/job/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const seedActor = "system"

var Module = fx.Module("seed",
	fx.Invoke(EnsureDemoData),
)

type Params struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	CustomerSvc customerdomain.Service
	DeviceSvc   devicedomain.Service
	JobSvc      jobdomain.Service
}

// EnsureDemoData creates one customer, device and job when the store is
// empty. Controlled by SEED_DEMO_DATA; reruns are no-ops.
func EnsureDemoData(p Params) error {
	if !p.Cfg.SeedDemoData {
		return nil
	}

	ctx := context.Background()
	log := p.Log.Named("seed")

	existing, err := p.CustomerSvc.List(ctx, customerdomain.ListFilter{Limit: 1})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("demo data skipped, customers already present")
		return nil
	}

	customer, err := p.CustomerSvc.Create(ctx, customerdomain.CustomerInput{
		Name:  "Demo Customer",
		Phone: "+62 812 0000 0000",
		Note:  "seeded for local evaluation",
	}, seedActor)
	if err != nil {
		return err
	}

	device, err := p.DeviceSvc.Create(ctx, devicedomain.DeviceInput{
		CustomerID: customer.ID,
		Brand:      "Apple",
		Model:      "iPhone 12",
		Condition:  "cracked screen, powers on",
	}, seedActor)
	if err != nil {
		return err
	}

	job, err := p.JobSvc.Create(ctx, jobdomain.CreateJobRequest{
		CustomerID: customer.ID,
		DeviceID:   device.ID,
		Tasks: []jobdomain.TaskInput{
			{Title: "Inspect display assembly"},
			{Title: "Quote replacement screen"},
		},
		InternalNote: "seeded demo job",
	}, seedActor)
	if err != nil {
		return err
	}

	log.Info("demo data seeded",
		zap.String("customer", customer.Name),
		zap.String("job_no", job.JobNo),
	)
	return nil
}
