package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	ports "github.com/theweak1/auto-finance/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Ensure interface conformance
var (
	_ ports.RowWriter  = (*Client)(nil)
	_ ports.CellReader = (*Client)(nil)
	_ ports.CellWriter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Credentials: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// AppendRows appends rows below the worksheet's existing data block. The
// whole month is uploaded in a single Append call instead of row-by-row
// inserts, which keeps well under the API quota.
func (c *Client) AppendRows(ctx context.Context, worksheet string, rows [][]any) error {
	if c.svc == nil {
		return &ports.WriterError{Op: "append", Worksheet: worksheet, Err: errors.New("sheets service not initialized")}
	}
	if len(rows) == 0 {
		return nil
	}

	rng := fmt.Sprintf("%s!A%d", worksheet, ports.DataStartRow)
	vr := &gsheet.ValueRange{Values: rows}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return &ports.WriterError{Op: "append", Worksheet: worksheet, Err: err}
	}

	slog.InfoContext(ctx, "Appended rows to worksheet",
		"worksheet", worksheet,
		"rows", len(rows))
	return nil
}

// ClearRows clears cell values from fromRow to the bottom of the worksheet.
func (c *Client) ClearRows(ctx context.Context, worksheet string, fromRow int) error {
	if c.svc == nil {
		return &ports.WriterError{Op: "clear", Worksheet: worksheet, Err: errors.New("sheets service not initialized")}
	}

	rng := fmt.Sprintf("%s!A%d:Z", worksheet, fromRow)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return &ports.WriterError{Op: "clear", Worksheet: worksheet, Err: err}
	}

	slog.InfoContext(ctx, "Cleared worksheet rows",
		"worksheet", worksheet,
		"from_row", fromRow)
	return nil
}

// ReadCell returns the value of a single cell as a string, or "" when empty.
func (c *Client) ReadCell(ctx context.Context, worksheet, addr string) (string, error) {
	if c.svc == nil {
		return "", &ports.WriterError{Op: "read", Worksheet: worksheet, Err: errors.New("sheets service not initialized")}
	}

	rng := fmt.Sprintf("%s!%s", worksheet, addr)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", &ports.WriterError{Op: "read", Worksheet: worksheet, Err: err}
	}
	if len(resp.Values) == 0 || len(resp.Values[0]) == 0 {
		return "", nil
	}
	return strings.TrimSpace(fmt.Sprint(resp.Values[0][0])), nil
}

// WriteCell sets the value of a single cell.
func (c *Client) WriteCell(ctx context.Context, worksheet, addr string, value any) error {
	if c.svc == nil {
		return &ports.WriterError{Op: "write", Worksheet: worksheet, Err: errors.New("sheets service not initialized")}
	}

	rng := fmt.Sprintf("%s!%s", worksheet, addr)
	vr := &gsheet.ValueRange{Values: [][]any{{value}}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return &ports.WriterError{Op: "write", Worksheet: worksheet, Err: err}
	}
	return nil
}
