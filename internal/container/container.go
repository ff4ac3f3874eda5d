package container

import (
	"fmt"
	"net/http"

	"go-student-scanner/internal/barcode"
	"go-student-scanner/internal/config"
	"go-student-scanner/internal/factory"
	"go-student-scanner/internal/logger"
	"go-student-scanner/internal/observer"
	"go-student-scanner/internal/repository"
	"go-student-scanner/internal/service"
	"go-student-scanner/internal/storage"
	"go-student-scanner/internal/transport"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Container holds all application dependencies
type Container struct {
	config            *config.Config
	store             storage.TableStore
	archive           storage.ImageArchive
	reader            *barcode.Reader
	studentRepository repository.StudentRepository
	events            *observer.EventPublisher
	registry          *prometheus.Registry
	scanService       service.ScanService
	handler           http.Handler
}

// NewContainer builds the dependency graph for cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	return NewContainerWithFactory(cfg, factory.NewComponentFactory(cfg))
}

// NewContainerWithFactory builds the dependency graph using the given factories
func NewContainerWithFactory(cfg *config.Config, components *factory.ComponentFactory) (*Container, error) {
	store, err := components.StoreFactory.CreateStore(factory.StoreType(cfg.StoreBackend))
	if err != nil {
		return nil, fmt.Errorf("failed to create student store: %w", err)
	}

	decoder, err := components.DecoderFactory.CreateDecoder(factory.DecoderType(cfg.DecoderBackend))
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create barcode decoder: %w", err)
	}

	archive, err := components.ArchiveFactory.CreateArchive(cfg.ArchiveEnabled)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to create scan archive: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observer.NewPrometheusObserver(registry)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(metrics)

	reader := barcode.NewReader(decoder)
	studentRepository := repository.NewStudentRepository(store, cfg.StudentTable)
	scanService := service.NewScanService(reader, studentRepository, archive, events, service.Options{
		DefaultLanguage: cfg.DefaultLanguage,
		StoreTimeout:    cfg.StoreTimeout,
		MaxImagePixels:  cfg.MaxImagePixels,
	})
	handler := transport.NewHandler(scanService, registry, cfg)

	return &Container{
		config:            cfg,
		store:             store,
		archive:           archive,
		reader:            reader,
		studentRepository: studentRepository,
		events:            events,
		registry:          registry,
		scanService:       scanService,
		handler:           handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// ScanService returns the scan service
func (c *Container) ScanService() service.ScanService {
	return c.scanService
}

// Close waits for pending events and releases the student store
func (c *Container) Close() error {
	c.events.Wait()
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close student store: %w", err)
	}
	return nil
}
