package database_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auto-credit-engine/internal/models"
	"auto-credit-engine/internal/services/database"
)

var testDB *database.DB

func TestMain(m *testing.M) {
	// Skip integration tests if no database URL is provided
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		os.Exit(0)
	}

	ctx := context.Background()
	var err error
	testDB, err = database.NewFromURL(ctx, url)
	if err != nil {
		panic("Failed to connect to test database: " + err.Error())
	}
	if err := testDB.Migrate(ctx); err != nil {
		panic("Failed to migrate test database: " + err.Error())
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func approvedDecision(documentID string) *models.CreditDecision {
	return &models.CreditDecision{
		ID:            uuid.NewString(),
		ApplicationID: uuid.NewString(),
		DocumentID:    documentID,
		VehicleVIN:    "1HGCM82633A004352",
		Status:        models.ApplicationStatusApproved,
		CreditScore:   780,
		Eligibility: models.EligibilityReport{
			IncomeFloorMet:         true,
			AcceptableHistory:      true,
			VehicleQualifies:       true,
			DebtToIncomeAcceptable: true,
			DebtToIncomeRatio:      decimal.Zero,
		},
		Assessment: &models.RiskAssessment{
			Factors: []models.RiskFactor{
				{Category: models.RiskCategoryCreditScore, Level: models.RiskLevelLow, Score: 85, Detail: "bureau score 780"},
			},
			OverallScore: decimal.RequireFromString("84.17"),
			Level:        models.RiskLevelLow,
			Approved:     true,
		},
		RequestedAmount:    decimal.RequireFromString("60000000"),
		MaxEligibleAmount:  decimal.RequireFromString("81000000"),
		ApprovedAmount:     decimal.RequireFromString("60000000"),
		InterestRate:       decimal.RequireFromString("0.11"),
		RecommendedRate:    decimal.RequireFromString("0.12"),
		TermMonths:         60,
		MonthlyInstallment: decimal.RequireFromString("1304557.35"),
		TotalInterest:      decimal.RequireFromString("18273441.00"),
		Reasons:            []string{"risk factor not yet evaluated: CREDIT_HISTORY"},
		DecidedAt:          time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestDatabaseHealthCheck(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, testDB.HealthCheck(ctx))
}

func TestDecisionRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := database.NewDecisionRepository(testDB)

	d := approvedDecision("doc-" + uuid.NewString()[:8])
	require.NoError(t, repo.Save(ctx, d))

	got, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, d.ApplicationID, got.ApplicationID)
	assert.Equal(t, models.ApplicationStatusApproved, got.Status)
	assert.True(t, d.ApprovedAmount.Equal(got.ApprovedAmount))
	assert.True(t, d.InterestRate.Equal(got.InterestRate))
	assert.True(t, d.MonthlyInstallment.Equal(got.MonthlyInstallment))
	require.NotNil(t, got.Assessment)
	assert.Equal(t, models.RiskLevelLow, got.Assessment.Level)
	assert.Equal(t, d.Reasons, got.Reasons)
	assert.True(t, d.DecidedAt.Equal(got.DecidedAt))

	byApp, err := repo.GetByApplicationID(ctx, d.ApplicationID)
	require.NoError(t, err)
	require.NotNil(t, byApp)
	assert.Equal(t, d.ID, byApp.ID)
}

func TestDecisionRepository_SaveUpsertsByApplication(t *testing.T) {
	ctx := context.Background()
	repo := database.NewDecisionRepository(testDB)

	d := approvedDecision("doc-" + uuid.NewString()[:8])
	require.NoError(t, repo.Save(ctx, d))

	d.ID = uuid.NewString()
	d.Status = models.ApplicationStatusRejected
	d.Assessment = nil
	d.ApprovedAmount = decimal.Zero
	require.NoError(t, repo.Save(ctx, d))

	got, err := repo.GetByApplicationID(ctx, d.ApplicationID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.ApplicationStatusRejected, got.Status)
	assert.Nil(t, got.Assessment)
}

func TestDecisionRepository_NotFound(t *testing.T) {
	repo := database.NewDecisionRepository(testDB)

	got, err := repo.GetByID(context.Background(), uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecisionRepository_BulkSaveAndList(t *testing.T) {
	ctx := context.Background()
	repo := database.NewDecisionRepository(testDB)

	doc := "doc-" + uuid.NewString()[:8]
	batchID := "batch-" + uuid.NewString()[:8]

	first := approvedDecision(doc)
	second := approvedDecision(doc)
	invalid := approvedDecision(doc)
	invalid.CreditScore = 100 // violates the score check constraint
	for _, d := range []*models.CreditDecision{first, second, invalid} {
		d.BatchID = batchID
	}

	result, err := repo.BulkSave(ctx, []*models.CreditDecision{first, invalid, second})
	require.NoError(t, err)
	assert.Equal(t, 2, result.InsertedCount)
	assert.Equal(t, 1, result.FailedCount)
	require.Len(t, result.Errors, 1)

	byBatch, err := repo.ListByBatch(ctx, batchID)
	require.NoError(t, err)
	assert.Len(t, byBatch, 2)

	byDoc, err := repo.ListByDocument(ctx, doc, 1)
	require.NoError(t, err)
	assert.Len(t, byDoc, 1)
}
