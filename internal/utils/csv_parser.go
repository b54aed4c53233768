package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"auto-credit-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
	ErrInvalidRowData = errors.New("invalid row data")
)

// RequiredColumns defines the columns that must be present in the CSV.
var RequiredColumns = []string{
	"document_id",
	"name",
	"date_of_birth",
	"monthly_income",
	"vin",
	"brand",
	"model",
	"year",
	"value",
	"kilometers",
	"requested_amount",
	"credit_score",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	// customer
	"documentid":    "document_id",
	"document":      "document_id",
	"cedula":        "document_id",
	"customer_id":   "document_id",
	"full_name":     "name",
	"fullname":      "name",
	"dob":           "date_of_birth",
	"birth_date":    "date_of_birth",
	"birthdate":     "date_of_birth",
	"income":        "monthly_income",
	"salary":        "monthly_income",
	"annual_income": "monthly_income",
	"debts":         "current_monthly_debts",
	"monthly_debts": "current_monthly_debts",
	"experience":    "work_experience_months",
	"work_months":   "work_experience_months",

	// vehicle
	"vehicle_vin":   "vin",
	"make":          "brand",
	"vehicle_brand": "brand",
	"vehicle_model": "model",
	"model_year":    "year",
	"vehicle_year":  "year",
	"vehicle_value": "value",
	"price":         "value",
	"km":            "kilometers",
	"mileage":       "kilometers",
	"odometer":      "kilometers",

	// loan
	"amount":      "requested_amount",
	"loan_amount": "requested_amount",
	"term":        "term_months",
	"months":      "term_months",
	"score":       "credit_score",
	"creditscore": "credit_score",
}

// ApplicationRow is one validated CSV line with the bureau score supplied
// alongside it.
type ApplicationRow struct {
	Line        int
	Application models.CreditApplication
	CreditScore models.CreditScore
}

// CSVParser handles parsing of credit application CSV files.
type CSVParser struct {
	defaultTerm     int
	columnMapping   map[string]int
	originalHeaders map[string]string // Maps normalized column name to original header
}

// NewCSVParser creates a parser that fills a missing term with defaultTerm.
func NewCSVParser(defaultTerm int) *CSVParser {
	return &CSVParser{
		defaultTerm:     defaultTerm,
		columnMapping:   make(map[string]int),
		originalHeaders: make(map[string]string),
	}
}

// ParseApplications parses CSV content into validated applications. Bad rows
// are reported by line number and skipped.
func (p *CSVParser) ParseApplications(content string) ([]ApplicationRow, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var rows []ApplicationRow
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		if isBlank(record) {
			continue
		}

		row, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		row.Line = lineNum
		rows = append(rows, row)
	}

	if len(rows) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return rows, parseErrors
}

// buildColumnMapping creates a mapping of standard column names to their indices.
func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)
	p.originalHeaders = make(map[string]string)

	for i, col := range header {
		normalized := normalizeColumn(col)
		original := normalized

		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}

		p.columnMapping[normalized] = i
		p.originalHeaders[normalized] = original
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

// parseRow parses a single CSV row into a validated application.
func (p *CSVParser) parseRow(record []string) (ApplicationRow, error) {
	get := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	dob, err := models.ParseBirthDate(get("date_of_birth"))
	if err != nil {
		return ApplicationRow{}, err
	}

	income, err := parseDecimal(get("monthly_income"))
	if err != nil {
		return ApplicationRow{}, fmt.Errorf("%w: monthly_income: %v", ErrInvalidRowData, err)
	}
	// Annual income columns are converted to monthly.
	if strings.Contains(p.originalHeaders["monthly_income"], "annual") {
		income = income.DivRound(models.Twelve, models.MoneyScale)
	}

	debts, err := parseOptionalDecimal(get("current_monthly_debts"))
	if err != nil {
		return ApplicationRow{}, fmt.Errorf("%w: current_monthly_debts: %v", ErrInvalidRowData, err)
	}
	experience, err := parseOptionalInt(get("work_experience_months"))
	if err != nil {
		return ApplicationRow{}, fmt.Errorf("%w: work_experience_months: %v", ErrInvalidRowData, err)
	}

	year, err := parseInt(get("year"))
	if err != nil {
		return ApplicationRow{}, fmt.Errorf("%w: year: %v", ErrInvalidRowData, err)
	}
	value, err := parseDecimal(get("value"))
	if err != nil {
		return ApplicationRow{}, fmt.Errorf("%w: value: %v", ErrInvalidRowData, err)
	}
	km, err := parseInt(get("kilometers"))
	if err != nil {
		return ApplicationRow{}, fmt.Errorf("%w: kilometers: %v", ErrInvalidRowData, err)
	}

	amount, err := parseDecimal(get("requested_amount"))
	if err != nil {
		return ApplicationRow{}, fmt.Errorf("%w: requested_amount: %v", ErrInvalidRowData, err)
	}
	term, err := parseOptionalInt(get("term_months"))
	if err != nil {
		return ApplicationRow{}, fmt.Errorf("%w: term_months: %v", ErrInvalidRowData, err)
	}

	rawScore, err := parseInt(get("credit_score"))
	if err != nil {
		return ApplicationRow{}, fmt.Errorf("%w: credit_score: %v", ErrInvalidRowData, err)
	}
	score, err := models.NewCreditScore(rawScore)
	if err != nil {
		return ApplicationRow{}, err
	}

	params := models.CreditApplicationParams{
		ApplicationID: get("application_id"),
		Customer: models.CustomerParams{
			DocumentID:           get("document_id"),
			Name:                 get("name"),
			DateOfBirth:          dob,
			MonthlyIncome:        income,
			CurrentMonthlyDebts:  debts,
			WorkExperienceMonths: experience,
		},
		Vehicle: models.VehicleParams{
			VIN:        get("vin"),
			Brand:      get("brand"),
			Model:      get("model"),
			Year:       year,
			Value:      value,
			Kilometers: km,
		},
		RequestedAmount: amount,
		TermMonths:      term,
	}

	app, err := params.ToApplication(p.defaultTerm)
	if err != nil {
		return ApplicationRow{}, err
	}

	return ApplicationRow{Application: app, CreditScore: score}, nil
}

func normalizeColumn(col string) string {
	col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
	return strings.ReplaceAll(col, " ", "_")
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// decimalComma matches a trailing decimal comma such as "2500000,50".
var decimalComma = regexp.MustCompile(`,[0-9]{1,2}$`)

// cleanNumber strips thousands separators, currency symbols and the COP code.
// A comma followed by one or two trailing digits is a decimal comma, and dots
// in such a value are thousands separators ("2.500.000,50").
func cleanNumber(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	s = strings.TrimSuffix(strings.TrimSpace(s), models.Currency)
	s = strings.TrimSpace(s)

	if decimalComma.MatchString(s) {
		i := strings.LastIndex(s, ",")
		s = strings.ReplaceAll(s[:i], ".", "") + "." + s[i+1:]
	}

	s = strings.ReplaceAll(s, ",", "")
	return strings.ReplaceAll(s, "_", "")
}

// parseDecimal parses a monetary amount without going through float64.
func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, errors.New("empty value")
	}
	return decimal.NewFromString(cleanNumber(s))
}

func parseOptionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return parseDecimal(s)
}

// parseInt parses a string to int, handling common formats.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	s = cleanNumber(s)

	// Handle float strings (e.g., "750.0")
	if strings.Contains(s, ".") {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return 0, err
		}
		if !d.Equal(d.Truncate(0)) {
			return 0, fmt.Errorf("%q is not a whole number", s)
		}
		return int(d.IntPart()), nil
	}

	return strconv.Atoi(s)
}

func parseOptionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return parseInt(s)
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalized := normalizeColumn(col)
		if alias, ok := ColumnAliases[normalized]; ok {
			normalized = alias
		}
		normalizedColumns[normalized] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		if !isBlank(record) {
			result.RowCount++
		}
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
