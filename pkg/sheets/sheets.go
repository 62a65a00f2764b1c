package sheets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Config contains credentials and the target spreadsheet. Credentials are a
// service-account JSON document, provided inline or as a file path.
type Config struct {
	CredentialsJSON string
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
}

// Client implements the row append/update contract against one sheet of a
// Google Sheets spreadsheet.
type Client struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
	logger        zerolog.Logger
}

// New constructs a Sheets client. The client is built once at startup and
// handed to the sync adapter; there is no lazy initialization.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id must be provided")
	}

	var opts []option.ClientOption
	switch {
	case cfg.CredentialsJSON != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("invalid sheets credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(sheets.SpreadsheetsScope))
	default:
		return nil, fmt.Errorf("sheets credentials must be provided")
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets service: %w", err)
	}

	sheetName := cfg.SheetName
	if sheetName == "" {
		sheetName = "Hoja1"
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
		logger:        logger.With().Str("component", "sheets").Logger(),
	}, nil
}

// IDColumn returns every cell of column A, header included. An empty sheet
// yields an empty slice.
func (c *Client) IDColumn(ctx context.Context) ([]string, error) {
	readRange := fmt.Sprintf("%s!A:A", c.sheetName)

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read column A: %w", err)
	}

	ids := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			ids = append(ids, "")
			continue
		}
		ids = append(ids, fmt.Sprint(row[0]))
	}

	return ids, nil
}

// Append adds a row after the last non-empty row of the sheet.
func (c *Client) Append(ctx context.Context, row []interface{}) error {
	body := &sheets.ValueRange{Values: [][]interface{}{row}}

	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, fmt.Sprintf("%s!A1", c.sheetName), body).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}

	c.logger.Debug().Msg("row appended to sheet")

	return nil
}

// Update overwrites the given 1-based row in place.
func (c *Client) Update(ctx context.Context, rowNumber int, row []interface{}) error {
	if rowNumber < 1 {
		return fmt.Errorf("row number must be positive, got %d", rowNumber)
	}

	body := &sheets.ValueRange{Values: [][]interface{}{row}}
	writeRange := fmt.Sprintf("%s!A%d", c.sheetName, rowNumber)

	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, writeRange, body).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update row %d: %w", rowNumber, err)
	}

	c.logger.Debug().Int("row", rowNumber).Msg("sheet row updated")

	return nil
}
