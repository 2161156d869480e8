package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/fenstra-as/jobflow-api/internal/domain"
	"github.com/fenstra-as/jobflow-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJob(title, customerID string, status domain.JobStatus) *domain.Job {
	return &domain.Job{
		Title:      title,
		CustomerID: customerID,
		Status:     status,
		StartType:  domain.StartMeasureAppointment,
		Roles:      domain.RoleList{{ID: "alu", Name: "Aluminium"}},
	}
}

func TestJobRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewJobRepository(db)
	ctx := context.Background()

	appointment := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	job := newJob("Villa Sørensen windows", "cust-1001", domain.StatusMeasurePending)
	job.Measure = &domain.Measure{Note: "call before arrival", Appointment: &appointment}
	job.Offer = &domain.Offer{Total: 85000, RolePrices: map[string]float64{"alu": 85000}}

	require.NoError(t, repo.Create(ctx, job))
	require.NotEqual(t, "", job.ID.String())

	got, err := repo.GetByID(ctx, job.ID)
	require.NoError(t, err)

	assert.Equal(t, "Villa Sørensen windows", got.Title)
	assert.Equal(t, "cust-1001", got.CustomerID)
	assert.Equal(t, domain.StatusMeasurePending, got.Status)
	require.Len(t, got.Roles, 1)
	assert.Equal(t, "alu", got.Roles[0].ID)
	require.NotNil(t, got.Measure)
	assert.Equal(t, "call before arrival", got.Measure.Note)
	require.NotNil(t, got.Measure.Appointment)
	assert.True(t, appointment.Equal(*got.Measure.Appointment))
	require.NotNil(t, got.Offer)
	assert.Equal(t, 85000.0, got.Offer.Total)
	assert.Equal(t, 85000.0, got.Offer.RolePrices["alu"])
}

func TestJobRepository_ListFilters(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewJobRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newJob("Office block doors", "cust-1", domain.StatusPricing)))
	require.NoError(t, repo.Create(ctx, newJob("Balcony glazing", "cust-2", domain.StatusOfferSent)))
	rejected := newJob("Garage door", "cust-2", domain.StatusRejected)
	rejected.Rejection = &domain.Rejection{
		Category: domain.RejectionPriceTooHigh,
		Reason:   "went with a cheaper quote",
		Date:     time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, rejected))

	status := domain.StatusPricing
	jobs, total, err := repo.List(ctx, 1, 20, &repository.JobFilters{Status: &status}, repository.JobSortByCreatedDesc)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Office block doors", jobs[0].Title)

	customer := "cust-2"
	jobs, total, err = repo.List(ctx, 1, 20, &repository.JobFilters{CustomerID: &customer}, repository.JobSortByTitleAsc)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, jobs, 2)
	assert.Equal(t, "Balcony glazing", jobs[0].Title)

	isRejected := true
	jobs, total, err = repo.List(ctx, 1, 20, &repository.JobFilters{IsRejected: &isRejected}, repository.JobSortByCreatedDesc)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Garage door", jobs[0].Title)

	search := "glazing"
	jobs, total, err = repo.List(ctx, 1, 20, &repository.JobFilters{SearchQuery: &search}, repository.JobSortByCreatedDesc)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Balcony glazing", jobs[0].Title)
}

func TestJobRepository_GetRejectedWithFollowUpDue(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewJobRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -2)
	future := now.AddDate(0, 0, 14)

	due := newJob("Due follow-up", "cust-1", domain.StatusRejected)
	due.Rejection = &domain.Rejection{
		Category:     domain.RejectionStillDeciding,
		Reason:       "board meets next month",
		FollowUpDate: &past,
		Date:         past,
	}
	require.NoError(t, repo.Create(ctx, due))

	notYet := newJob("Future follow-up", "cust-1", domain.StatusRejected)
	notYet.Rejection = &domain.Rejection{
		Category:     domain.RejectionTiming,
		Reason:       "renovation postponed",
		FollowUpDate: &future,
		Date:         past,
	}
	require.NoError(t, repo.Create(ctx, notYet))

	noDate := newJob("No follow-up date", "cust-1", domain.StatusRejected)
	noDate.Rejection = &domain.Rejection{
		Category: domain.RejectionCompetitor,
		Reason:   "lost to competitor",
		Date:     past,
	}
	require.NoError(t, repo.Create(ctx, noDate))

	jobs, err := repo.GetRejectedWithFollowUpDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Due follow-up", jobs[0].Title)
}

func TestJobRepository_CountByStatus(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewJobRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newJob("a", "c", domain.StatusPricing)))
	require.NoError(t, repo.Create(ctx, newJob("b", "c", domain.StatusPricing)))
	require.NoError(t, repo.Create(ctx, newJob("c", "c", domain.StatusClosed)))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, counts[domain.StatusPricing])
	assert.EqualValues(t, 1, counts[domain.StatusClosed])
}
