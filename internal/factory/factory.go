package factory

import (
	"fmt"

	"go-student-scanner/internal/barcode"
	"go-student-scanner/internal/config"
	"go-student-scanner/internal/storage"
)

// StoreType represents different student table backends
type StoreType string

const (
	// SupabaseStore for a Supabase project over PostgREST
	SupabaseStore StoreType = config.StoreSupabase
	// SQLiteStore for a local database file
	SQLiteStore StoreType = config.StoreSQLite
)

// DecoderType represents different barcode decoding backends
type DecoderType string

const (
	// GozxingDecoder for the pure Go ZXing port
	GozxingDecoder DecoderType = config.DecoderGozxing
	// NoDecoder when decoding is disabled
	NoDecoder DecoderType = config.DecoderNone
)

// StoreFactory creates table stores
type StoreFactory interface {
	CreateStore(storeType StoreType) (storage.TableStore, error)
}

// DecoderFactory creates barcode decoders
type DecoderFactory interface {
	CreateDecoder(decoderType DecoderType) (barcode.Decoder, error)
}

// ArchiveFactory creates scan archives
type ArchiveFactory interface {
	CreateArchive(enabled bool) (storage.ImageArchive, error)
}

// storeFactory implements StoreFactory
type storeFactory struct {
	cfg *config.Config
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config) StoreFactory {
	return &storeFactory{cfg: cfg}
}

// CreateStore creates a table store based on the specified type
func (f *storeFactory) CreateStore(storeType StoreType) (storage.TableStore, error) {
	switch storeType {
	case SupabaseStore:
		if f.cfg.SupabaseURL == "" || f.cfg.SupabaseKey == "" {
			return nil, fmt.Errorf("supabase store requires SUPABASE_URL and SUPABASE_KEY")
		}
		return storage.NewPostgRESTStore(f.cfg.SupabaseURL, f.cfg.SupabaseKey, f.cfg.StoreTimeout), nil
	case SQLiteStore:
		return storage.OpenSQLiteStore(f.cfg.SQLitePath, f.cfg.StudentTable)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}

// decoderFactory implements DecoderFactory
type decoderFactory struct {
	cfg *config.Config
}

// NewDecoderFactory creates a new decoder factory
func NewDecoderFactory(cfg *config.Config) DecoderFactory {
	return &decoderFactory{cfg: cfg}
}

// CreateDecoder creates a decoder based on the specified type
func (f *decoderFactory) CreateDecoder(decoderType DecoderType) (barcode.Decoder, error) {
	switch decoderType {
	case GozxingDecoder:
		opts := barcode.DefaultDecoderOptions().WithTryHarder(f.cfg.DecoderTryHarder)
		if len(f.cfg.DecoderFormats) > 0 {
			formats := make([]barcode.Format, 0, len(f.cfg.DecoderFormats))
			for _, name := range f.cfg.DecoderFormats {
				format, err := barcode.ParseFormat(name)
				if err != nil {
					return nil, err
				}
				formats = append(formats, format)
			}
			opts = opts.WithFormats(formats...)
		}
		return barcode.NewGozxingDecoder(opts), nil
	case NoDecoder:
		return barcode.NewUnavailableDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported decoder type: %s", decoderType)
	}
}

// archiveFactory implements ArchiveFactory
type archiveFactory struct {
	cfg *config.Config
}

// NewArchiveFactory creates a new archive factory
func NewArchiveFactory(cfg *config.Config) ArchiveFactory {
	return &archiveFactory{cfg: cfg}
}

// CreateArchive returns the Azure archive when enabled, a no-op otherwise
func (f *archiveFactory) CreateArchive(enabled bool) (storage.ImageArchive, error) {
	if !enabled {
		return storage.NewNopArchive(), nil
	}
	return storage.NewAzureArchive(f.cfg.AzureAccount, f.cfg.AzureKey, f.cfg.AzureContainer)
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	StoreFactory   StoreFactory
	DecoderFactory DecoderFactory
	ArchiveFactory ArchiveFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		StoreFactory:   NewStoreFactory(cfg),
		DecoderFactory: NewDecoderFactory(cfg),
		ArchiveFactory: NewArchiveFactory(cfg),
	}
}
