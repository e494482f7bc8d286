package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/smallbiznis/servisdesk/internal/audit/domain"
	"github.com/smallbiznis/servisdesk/internal/config"
	customerdomain "github.com/smallbiznis/servisdesk/internal/customer/domain"
	devicedomain "github.com/smallbiznis/servisdesk/internal/device/domain"
	invoicedomain "github.com/smallbiznis/servisdesk/internal/invoice/domain"
	jobdomain "github.com/smallbiznis/servisdesk/internal/job/domain"
	numberingdomain "github.com/smallbiznis/servisdesk/internal/numbering/domain"
	paymentdomain "github.com/smallbiznis/servisdesk/internal/payment/domain"
	"github.com/smallbiznis/servisdesk/internal/providers/pdf"
	quotationdomain "github.com/smallbiznis/servisdesk/internal/quotation/domain"
	receiptdomain "github.com/smallbiznis/servisdesk/internal/receipt/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewMetrics),
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(log *zap.Logger, metrics *Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(log *zap.Logger, metrics *Metrics) *gin.Engine {
	return NewEngine(log, metrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	jobSvc       jobdomain.Service
	quotationSvc quotationdomain.Service
	invoiceSvc   invoicedomain.Service
	paymentSvc   paymentdomain.Service
	receiptSvc   receiptdomain.Service
	customerSvc  customerdomain.Service
	deviceSvc    devicedomain.Service
	auditSvc     auditdomain.Service
	numberingSvc numberingdomain.Service
	pdfProvider  pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	JobSvc       jobdomain.Service
	QuotationSvc quotationdomain.Service
	InvoiceSvc   invoicedomain.Service
	PaymentSvc   paymentdomain.Service
	ReceiptSvc   receiptdomain.Service
	CustomerSvc  customerdomain.Service
	DeviceSvc    devicedomain.Service
	AuditSvc     auditdomain.Service
	NumberingSvc numberingdomain.Service
	PDFProvider  pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		jobSvc:       p.JobSvc,
		quotationSvc: p.QuotationSvc,
		invoiceSvc:   p.InvoiceSvc,
		paymentSvc:   p.PaymentSvc,
		receiptSvc:   p.ReceiptSvc,
		customerSvc:  p.CustomerSvc,
		deviceSvc:    p.DeviceSvc,
		auditSvc:     p.AuditSvc,
		numberingSvc: p.NumberingSvc,
		pdfProvider:  p.PDFProvider,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", ActorRequired())

	// -------- Jobs --------
	api.GET("/jobs", s.ListJobs)
	api.POST("/jobs", s.CreateJob)
	api.GET("/jobs/:id", s.GetJobByID)
	api.POST("/jobs/:id/transition", s.TransitionJob)
	api.POST("/jobs/:id/assign", s.AssignJob)
	api.PUT("/jobs/:id/tasks", s.ReplaceJobTasks)
	api.POST("/jobs/:id/tasks/:taskId/toggle", s.ToggleJobTask)
	api.PATCH("/jobs/:id/notes", s.UpdateJobNotes)
	api.PATCH("/jobs/:id/costs", s.UpdateJobCosts)

	// -------- Quotations --------
	api.GET("/quotations", s.ListQuotations)
	api.POST("/quotations", s.CreateQuotation)
	api.GET("/quotations/:id", s.GetQuotationByID)
	api.PUT("/quotations/:id", s.UpdateQuotation)
	api.POST("/quotations/:id/transition", s.TransitionQuotation)

	// -------- Invoices --------
	api.GET("/invoices", s.ListInvoices)
	api.POST("/invoices", s.CreateInvoice)
	api.POST("/invoices/from-quotation", s.CreateInvoiceFromQuotation)
	api.GET("/invoices/:id", s.GetInvoiceByID)
	api.POST("/invoices/:id/cancel", s.CancelInvoice)
	api.GET("/invoices/:id/payments", s.ListInvoicePayments)
	api.GET("/invoices/:id/render", s.RenderInvoice)

	// -------- Payments --------
	api.POST("/payments", s.RecordPayment)
	api.GET("/payments", s.ListPayments)
	api.GET("/payments/:id", s.GetPaymentByID)
	api.GET("/reports/sales", s.GetSalesTotal)

	// -------- Receipts --------
	api.GET("/receipts", s.ListReceipts)
	api.POST("/receipts", s.GenerateReceipt)
	api.GET("/receipts/:id", s.GetReceiptByID)
	api.GET("/receipts/:id/render", s.RenderReceipt)

	// -------- Customers & Devices --------
	api.GET("/customers", s.ListCustomers)
	api.POST("/customers", s.CreateCustomer)
	api.GET("/customers/:id", s.GetCustomerByID)
	api.PUT("/customers/:id", s.UpdateCustomer)
	api.DELETE("/customers/:id", s.DeleteCustomer)

	api.GET("/devices", s.ListDevices)
	api.POST("/devices", s.CreateDevice)
	api.GET("/devices/:id", s.GetDeviceByID)
	api.PUT("/devices/:id", s.UpdateDevice)
	api.DELETE("/devices/:id", s.DeleteDevice)

	// -------- Numbering --------
	api.GET("/numbering/:docType", s.GetNumberingCounter)

	// -------- Audit Trail --------
	api.GET("/audit-logs", s.ListAuditLogs)
}
