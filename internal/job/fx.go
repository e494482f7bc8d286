package job

import (
	"github.com/smallbiznis/servisdesk/internal/job/repository"
	"github.com/smallbiznis/servisdesk/internal/job/service"
	"go.uber.org/fx"
)

var Module = fx.Module("job.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
