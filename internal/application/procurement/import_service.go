package procurementapp

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/procurement/internal/domain/procurement"
	"github.com/erp/procurement/internal/domain/shared"
	poimport "github.com/erp/procurement/internal/infrastructure/import"
	"github.com/erp/procurement/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ImportPreviewLimit is the number of rows echoed back by Validate
const ImportPreviewLimit = 50

// FileArchive stores uploaded import files
type FileArchive interface {
	Archive(ctx context.Context, tenantID uuid.UUID, filename string, data []byte) (string, error)
}

// ImportPreviewRow is one row of an import validation preview
type ImportPreviewRow struct {
	RowNumber    int                 `json:"row_number"`
	ProductCode  string              `json:"product_code"`
	Quantity     decimal.Decimal     `json:"quantity"`
	UnitPrice    *decimal.Decimal    `json:"unit_price,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	ProductName  string              `json:"product_name,omitempty"`
	SupplierName string              `json:"supplier_name,omitempty"`
	Currency     string              `json:"currency,omitempty"`
	Valid        bool                `json:"valid"`
	Errors       []poimport.RowError `json:"errors,omitempty"`
}

// ImportValidationResponse is the dry-run result for an import file
type ImportValidationResponse struct {
	TotalRows       int                 `json:"total_rows"`
	ValidRows       int                 `json:"valid_rows"`
	ErrorRows       int                 `json:"error_rows"`
	EstimatedOrders int                 `json:"estimated_orders"`
	Errors          []poimport.RowError `json:"errors,omitempty"`
	TotalErrors     int                 `json:"total_errors"`
	IsTruncated     bool                `json:"is_truncated,omitempty"`
	Preview         []ImportPreviewRow  `json:"preview"`
}

// ImportExecuteResponse is the result of an executed import
type ImportExecuteResponse struct {
	RowsImported   int                   `json:"rows_imported"`
	ArchiveKey     string                `json:"archive_key,omitempty"`
	PurchaseOrders []CreatedOrderSummary `json:"purchase_orders"`
}

// ImportService turns CSV/XLSX uploads into quick-entry batches
type ImportService struct {
	quickEntry *QuickEntryService
	resolver   *procurement.LineResolver
	parser     *poimport.LineParser
	archive    FileArchive
	metrics    *telemetry.ProcurementMetrics
	logger     *zap.Logger
}

// ImportOption configures an ImportService
type ImportOption func(*ImportService)

// WithLineParser replaces the default file parser
func WithLineParser(p *poimport.LineParser) ImportOption {
	return func(s *ImportService) {
		if p != nil {
			s.parser = p
		}
	}
}

// WithFileArchive archives executed uploads
func WithFileArchive(a FileArchive) ImportOption {
	return func(s *ImportService) {
		s.archive = a
	}
}

// WithImportLogger sets the logger
func WithImportLogger(logger *zap.Logger) ImportOption {
	return func(s *ImportService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewImportService creates a new ImportService
func NewImportService(quickEntry *QuickEntryService, resolver *procurement.LineResolver, opts ...ImportOption) *ImportService {
	s := &ImportService{
		quickEntry: quickEntry,
		resolver:   resolver,
		parser:     poimport.NewLineParser(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetMetrics sets the procurement metrics collector
func (s *ImportService) SetMetrics(m *telemetry.ProcurementMetrics) {
	s.metrics = m
}

// Validate parses the file and resolves every row without persisting.
// All row problems are reported; nothing aborts on the first failure.
func (s *ImportService) Validate(ctx context.Context, tenantID uuid.UUID, filename string, data []byte) (resp *ImportValidationResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "import.validate", telemetry.AttrTenantID.String(tenantID.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	result, err := s.parse(filename, data)
	if err != nil {
		s.recordImport(ctx, tenantID, "validate", err, 0)
		return nil, err
	}

	errs := poimport.NewErrorCollection(poimport.DefaultMaxErrors)
	resp = &ImportValidationResponse{
		TotalRows: result.TotalRows(),
		Preview:   make([]ImportPreviewRow, 0, min(result.TotalRows(), ImportPreviewLimit)),
	}
	partitions := make(map[procurement.PartitionKey]struct{})

	for _, row := range result.Rows {
		preview := ImportPreviewRow{
			RowNumber:   row.RowNumber,
			ProductCode: row.ProductCode,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			Notes:       row.Notes,
			Errors:      row.Errors,
		}
		if row.Valid() {
			candidate, rerr := s.resolver.Resolve(ctx, tenantID, entryOf(row))
			switch {
			case rerr == nil:
				preview.ProductName = candidate.ProductName
				preview.SupplierName = candidate.SupplierName
				preview.Currency = candidate.Currency.String()
				partitions[candidate.Key()] = struct{}{}
			case isRowLevel(rerr):
				preview.Errors = append(preview.Errors, resolutionRowError(row, rerr))
			default:
				return nil, rerr
			}
		}
		preview.Valid = len(preview.Errors) == 0
		if preview.Valid {
			resp.ValidRows++
		} else {
			resp.ErrorRows++
		}
		for _, e := range preview.Errors {
			errs.Add(e)
		}
		if len(resp.Preview) < ImportPreviewLimit {
			resp.Preview = append(resp.Preview, preview)
		}
	}

	resp.EstimatedOrders = len(partitions)
	resp.Errors = errs.Errors()
	resp.TotalErrors = errs.TotalCount()
	resp.IsTruncated = errs.IsTruncated()
	s.recordImport(ctx, tenantID, "validate", nil, resp.TotalRows)
	return resp, nil
}

// Execute imports the file as one quick-entry batch. The warehouse and
// requester are checked before the file is read; any invalid row fails
// the whole import.
func (s *ImportService) Execute(ctx context.Context, tenantID uuid.UUID, requesterID, warehouseID *uuid.UUID, filename string, data []byte) (*ImportExecuteResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "import.execute", telemetry.AttrTenantID.String(tenantID.String()))
	resp, err := s.execute(ctx, tenantID, requesterID, warehouseID, filename, data)
	telemetry.EndSpan(span, err)
	rows := 0
	if resp != nil {
		rows = resp.RowsImported
	}
	s.recordImport(ctx, tenantID, "execute", err, rows)
	return resp, err
}

func (s *ImportService) execute(ctx context.Context, tenantID uuid.UUID, requesterID, warehouseID *uuid.UUID, filename string, data []byte) (*ImportExecuteResponse, error) {
	if warehouseID == nil || *warehouseID == uuid.Nil {
		return nil, procurement.ErrWarehouseRequired
	}
	if requesterID == nil || *requesterID == uuid.Nil {
		return nil, procurement.ErrUnauthenticated
	}

	result, err := s.parse(filename, data)
	if err != nil {
		return nil, err
	}
	if n := result.ErrorRowCount(); n > 0 {
		first := result.Errors.Errors()[0]
		return nil, procurement.NewValidationError("file",
			fmt.Sprintf("%d row(s) failed validation, first: %s", n, first.Error()))
	}

	entries := make([]procurement.ProductEntry, len(result.Rows))
	for i, row := range result.Rows {
		entries[i] = entryOf(row)
	}
	created, err := s.quickEntry.CreateFromEntries(ctx, tenantID, requesterID, warehouseID, entries)
	if err != nil {
		return nil, err
	}

	resp := &ImportExecuteResponse{
		RowsImported:   len(entries),
		PurchaseOrders: created.PurchaseOrders,
	}
	if s.archive != nil {
		key, err := s.archive.Archive(ctx, tenantID, filename, data)
		if err != nil {
			s.logger.Warn("Failed to archive import file",
				zap.String("tenant_id", tenantID.String()),
				zap.String("filename", filename),
				zap.Error(err),
			)
		} else {
			resp.ArchiveKey = key
		}
	}
	return resp, nil
}

func (s *ImportService) parse(filename string, data []byte) (*poimport.ParseResult, error) {
	format, err := poimport.DetectFormat(filename)
	if err != nil {
		return nil, fileValidationError(err)
	}
	result, err := s.parser.Parse(data, format)
	if err != nil {
		return nil, fileValidationError(err)
	}
	return result, nil
}

func (s *ImportService) recordImport(ctx context.Context, tenantID uuid.UUID, phase string, err error, rows int) {
	if s.metrics != nil {
		s.metrics.RecordImport(ctx, tenantID, phase, outcomeOf(err), rows)
	}
}

func entryOf(row poimport.LineRow) procurement.ProductEntry {
	return procurement.ProductEntry{
		ProductCode: row.ProductCode,
		Quantity:    row.Quantity,
		UnitPrice:   row.UnitPrice,
		Notes:       row.Notes,
	}
}

func fileValidationError(err error) error {
	var fe *poimport.FileError
	if errors.As(err, &fe) {
		return procurement.NewValidationError("file", fe.Message).WithDetail("import_code", fe.Code)
	}
	return err
}

// isRowLevel reports whether a resolver error belongs to the row rather
// than to the infrastructure
func isRowLevel(err error) bool {
	if procurement.IsResolutionError(err) {
		return true
	}
	return errors.Is(err, procurement.ErrInvalidQuantity) || errors.Is(err, procurement.ErrValidationFailed)
}

func resolutionRowError(row poimport.LineRow, err error) poimport.RowError {
	column := poimport.ColumnProductCode
	code := errorCodeOf(err)
	message := err.Error()
	if de, ok := shared.AsDomainError(err); ok {
		message = de.Message
		switch code {
		case procurement.CodeInvalidQuantity:
			column = poimport.ColumnQuantity
		case procurement.CodeValidationFailed:
			column = poimport.ColumnUnitPrice
		}
	}
	return poimport.NewRowErrorWithValue(row.RowNumber, column, code, message, row.ProductCode)
}
