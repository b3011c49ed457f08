package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"itandi_watch/internal/model"
)

const (
	criteriaRange = "検索条件!A:V"
	seenSheet     = "通知済み物件"
	pendingSheet  = "承認待ち物件"
	seenRange     = seenSheet + "!A:G"
	pendingRange  = pendingSheet + "!A:G"

	sheetTimeLayout = "2006-01-02 15:04:05"

	// bound on every Sheets API call; the run's context has no
	// deadline of its own, a hung read must not stall the run
	sheetsTimeout = 30 * time.Second
)

// Sheets reads criteria from and appends surfaced listings to one
// spreadsheet. It is both the CriteriaSource and the SeenStore when the
// operators run the approval workflow off the sheet.
type Sheets struct {
	svc           *sheets.Service
	spreadsheetID string
	log           *slog.Logger
	now           func() time.Time
	loc           *time.Location
	timeout       time.Duration
}

// NewSheets creates a Sheets store authenticated with the given service
// account credentials JSON.
func NewSheets(ctx context.Context, spreadsheetID string, credentialsJSON []byte, log *slog.Logger) (*Sheets, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return &Sheets{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		log:           log,
		now:           time.Now,
		loc:           loc,
		timeout:       sheetsTimeout,
	}, nil
}

func (s *Sheets) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// LoadCriteria reads every customer's saved search off the criteria
// sheet. Rows without a name are skipped.
func (s *Sheets) LoadCriteria(ctx context.Context) ([]model.SearchCriteria, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, criteriaRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read criteria sheet: %w", err)
	}
	if len(resp.Values) < 2 {
		return nil, nil
	}

	var criteria []model.SearchCriteria
	for _, raw := range resp.Values[1:] {
		c, ok := ParseCriteriaRow(cellStrings(raw))
		if !ok {
			continue
		}
		criteria = append(criteria, c)
	}
	return criteria, nil
}

// LoadSeen returns the dedup keys of already-notified listings.
func (s *Sheets) LoadSeen(ctx context.Context) (map[model.SeenKey]struct{}, error) {
	return s.loadKeys(ctx, seenRange)
}

// LoadPending returns the dedup keys of listings awaiting approval.
func (s *Sheets) LoadPending(ctx context.Context) (map[model.SeenKey]struct{}, error) {
	return s.loadKeys(ctx, pendingRange)
}

// loadKeys reads (customer, room id) pairs off a tracking sheet:
// column A is the customer, column C the room id.
func (s *Sheets) loadKeys(ctx context.Context, readRange string) (map[model.SeenKey]struct{}, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", readRange, err)
	}

	keys := make(map[model.SeenKey]struct{})
	for _, raw := range resp.Values {
		row := cellStrings(raw)
		if len(row) < 3 {
			continue
		}
		roomID, err := strconv.ParseInt(row[2], 10, 64)
		if err != nil || row[0] == "" {
			continue
		}
		keys[model.SeenKey{Customer: row[0], RoomID: roomID}] = struct{}{}
	}
	return keys, nil
}

// AppendPending records surfaced listings on the approval sheet.
func (s *Sheets) AppendPending(ctx context.Context, entries []model.SeenEntry) error {
	if len(entries) == 0 {
		return nil
	}

	values := make([][]any, 0, len(entries))
	for _, e := range entries {
		notifiedAt := e.NotifiedAt
		if notifiedAt.IsZero() {
			notifiedAt = s.now()
		}
		values = append(values, []any{
			e.Customer,
			strconv.FormatInt(e.BuildingID, 10),
			strconv.FormatInt(e.RoomID, 10),
			e.BuildingName,
			strconv.Itoa(e.Rent),
			e.URL,
			notifiedAt.In(s.loc).Format(sheetTimeLayout),
		})
	}

	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, pendingRange, &sheets.ValueRange{Values: values}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append to %s: %w", pendingSheet, err)
	}
	return nil
}

// cellStrings converts one sheet row from the API's []any form.
func cellStrings(raw []any) []string {
	row := make([]string, len(raw))
	for i, v := range raw {
		row[i] = fmt.Sprintf("%v", v)
	}
	return row
}
