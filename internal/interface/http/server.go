package httpapi

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"time"

	"farm-platform/internal/application/inventory"
	"farm-platform/internal/application/reports"
	reportsDomain "farm-platform/internal/domain/reports"
	"farm-platform/internal/infra/memory"
	"farm-platform/internal/infrastructure/config"
	"farm-platform/internal/infrastructure/export/document"
	"farm-platform/internal/infrastructure/export/workbook"
	"farm-platform/internal/infrastructure/logging"
	"farm-platform/internal/infrastructure/notify"
	"farm-platform/internal/infrastructure/persistence/postgres"

	"github.com/gin-gonic/gin"
)

// farmStore 同時滿足報表讀取與庫存寫入。
type farmStore interface {
	reports.FarmRepository
	inventory.Repository
}

// reportRenderer 將報表轉為檔案位元組。
type reportRenderer interface {
	Render(r reportsDomain.CropReport) ([]byte, error)
}

// Server 封裝 gin engine 與報表、庫存用例。
type Server struct {
	engine *gin.Engine
	db     *sql.DB
	store  farmStore
	memory *memory.Store
	log    *logging.ZeroLogger

	generator *reports.Generator
	pdf       reportRenderer
	xlsx      reportRenderer
	outflows  *inventory.OutflowUseCase

	reportTimeout time.Duration
	loc           *time.Location
	now           func() time.Time
}

// NewServer 建立 HTTP 伺服器；db 為 nil 時使用記憶體資料。
func NewServer(cfg config.Config, db *sql.DB, log *logging.ZeroLogger) *Server {
	if log == nil {
		log = logging.New(io.Discard, cfg.Log.Level, false)
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		db:            db,
		log:           log,
		reportTimeout: cfg.HTTP.ReportTimeout,
		loc:           cfg.Report.Location(),
		now:           time.Now,
	}

	if db != nil {
		s.store = postgres.NewFarmRepo(db)
	} else {
		mem := memory.NewStore()
		if cfg.Report.SeedDemo {
			mem.SeedDemo(time.Now().In(s.loc))
			log.Info("demo farm data seeded", "crop_id", memory.DemoCropID)
		}
		s.memory = mem
		s.store = mem
	}

	var notifier inventory.Notifier
	tg := cfg.Notifier.Telegram
	if tg.Enabled {
		client := notify.NewTelegramClient(tg.Token, tg.ChatID, tg.Prefix)
		if client.Enabled() {
			notifier = client
		} else {
			log.Warn("telegram notifier enabled without token or chat id")
		}
	}

	s.generator = reports.NewGenerator(s.store, log.With("component", "report_generator"))
	s.pdf = document.NewExporter(document.Options{
		Branding: cfg.Report.Branding,
		Location: s.loc,
		Compress: true,
	}, log.With("component", "pdf_exporter"))
	s.xlsx = workbook.NewExporter(s.loc, log.With("component", "xlsx_exporter"))
	s.outflows = inventory.NewOutflowUseCase(s.store, notifier, log.With("component", "inventory"))

	s.engine = s.routes()
	return s
}

// Handler 回傳可掛載的 http.Handler。
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe 啟動服務直到 ctx 結束。
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
