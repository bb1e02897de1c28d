package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legalease/internal/media/attachment"
	"legalease/internal/models"
	"legalease/internal/queue"
	"legalease/internal/storage"
)

func contractReview(lawyerID string) CreateCaseInput {
	return CreateCaseInput{
		LawyerID:    lawyerID,
		Title:       "Contract Review",
		Description: "Review the supplier agreement before signing.",
		CaseType:    "Commercial",
	}
}

func TestCaseLifecycle_ContractReviewScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.withListedLawyer("l1")

	u1 := models.ClientPrincipal("u1")
	u2 := models.ClientPrincipal("u2")
	l1 := models.LawyerPrincipal("l1")

	c, err := env.caseSvc.Create(ctx, u1, contractReview("l1"))
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusPending, c.Status)
	assert.Equal(t, "u1", c.ClientID)
	assert.Equal(t, "l1", c.LawyerID)
	assert.False(t, c.CreatedAt.IsZero())
	assert.Nil(t, c.Attachment)

	updated, err := env.caseSvc.Transition(ctx, l1, c.ID, "In Progress")
	require.NoError(t, err)
	assert.Equal(t, models.CaseStatusInProgress, updated.Status)
	assert.Equal(t, models.CaseStatusInProgress, env.cases.status(c.ID))

	_, err = env.caseSvc.Transition(ctx, u2, c.ID, "Completed")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, models.CaseStatusInProgress, env.cases.status(c.ID))

	assert.Equal(t, []queue.TaskType{queue.TaskCaseCreated, queue.TaskCaseTransitioned}, env.tasks.types())
}

func TestTransition_OnlyGraphEdgesSucceed(t *testing.T) {
	all := []models.CaseStatus{
		models.CaseStatusPending,
		models.CaseStatusInProgress,
		models.CaseStatusCompleted,
		models.CaseStatusRejected,
	}
	allowed := map[[2]models.CaseStatus]bool{
		{models.CaseStatusPending, models.CaseStatusInProgress}:   true,
		{models.CaseStatusPending, models.CaseStatusRejected}:     true,
		{models.CaseStatusInProgress, models.CaseStatusCompleted}: true,
		{models.CaseStatusInProgress, models.CaseStatusRejected}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			env := newTestEnv(t)
			ctx := context.Background()
			require.NoError(t, env.cases.Create(ctx, models.Case{ID: "c1", ClientID: "u1", LawyerID: "l1", Status: from}))

			_, err := env.caseSvc.Transition(ctx, models.LawyerPrincipal("l1"), "c1", string(to))
			if allowed[[2]models.CaseStatus{from, to}] {
				assert.NoError(t, err, "%s -> %s", from, to)
				assert.Equal(t, to, env.cases.status("c1"))
				continue
			}
			assert.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
			assert.Equal(t, from, env.cases.status("c1"), "%s -> %s leaves status", from, to)
			assert.Equal(t, 0, env.cases.updates)
		}
	}
}

func TestTransition_OtherLawyerIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.cases.Create(ctx, models.Case{ID: "c1", ClientID: "u1", LawyerID: "lA", Status: models.CaseStatusPending}))

	for _, target := range []string{"In Progress", "Rejected", "Completed"} {
		_, err := env.caseSvc.Transition(ctx, models.LawyerPrincipal("lB"), "c1", target)
		assert.ErrorIs(t, err, ErrForbidden, target)
	}
	assert.Equal(t, models.CaseStatusPending, env.cases.status("c1"))
	assert.Equal(t, 0, env.cases.updates)
}

func TestTransition_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	l1 := models.LawyerPrincipal("l1")
	require.NoError(t, env.cases.Create(ctx, models.Case{ID: "c1", ClientID: "u1", LawyerID: "l1", Status: models.CaseStatusPending}))

	_, err := env.caseSvc.Transition(ctx, l1, "c1", "Archived")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = env.caseSvc.Transition(ctx, l1, "missing", "Rejected")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.caseSvc.Transition(ctx, models.Anonymous(), "c1", "Rejected")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.caseSvc.Transition(ctx, l1, "c1", "InProgress")
	assert.NoError(t, err, "camel-case spelling is accepted")

	env.cases.err = errors.New("db down")
	_, err = env.caseSvc.Transition(ctx, l1, "c1", "Completed")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable, "writes never degrade silently")
}

func TestCreate_LawyerWithoutCompleteProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u1 := models.ClientPrincipal("u1")

	env.lawyers.add("l2")
	_, err := env.caseSvc.Create(ctx, u1, contractReview("l2"))
	assert.ErrorIs(t, err, ErrLawyerNotFound)

	incomplete := completeProfile("l3")
	incomplete.MinPrice = nil
	env.lawyers.add("l3")
	env.profiles.put(incomplete)
	_, err = env.caseSvc.Create(ctx, u1, contractReview("l3"))
	assert.ErrorIs(t, err, ErrLawyerNotFound)

	_, err = env.caseSvc.Create(ctx, u1, contractReview("ghost"))
	assert.ErrorIs(t, err, ErrLawyerNotFound)

	assert.Equal(t, models.CaseStats{}, env.caseSvc.StatsForLawyer(ctx, "l2"))

	entries, err := env.directory.ListAvailable(ctx, u1)
	require.NoError(t, err)
	assert.Empty(t, entries)

	cases, err := env.caseSvc.ListForClient(ctx, u1)
	require.NoError(t, err)
	assert.Empty(t, cases, "no partial case rows")
}

func TestCreate_RoleAndValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.withListedLawyer("l1")

	_, err := env.caseSvc.Create(ctx, models.LawyerPrincipal("l1"), contractReview("l1"))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.caseSvc.Create(ctx, models.Anonymous(), contractReview("l1"))
	assert.ErrorIs(t, err, ErrUnauthenticated)

	in := contractReview("l1")
	in.Title = "  "
	_, err = env.caseSvc.Create(ctx, models.ClientPrincipal("u1"), in)
	assert.ErrorIs(t, err, ErrValidation)

	env.lawyers.err = errors.New("store must not be reached")
	in = contractReview("l1")
	in.Attachment = "data:application/pdf;base64,@@@"
	_, err = env.caseSvc.Create(ctx, models.ClientPrincipal("u1"), in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "attachment", verr.Field)
	assert.Empty(t, env.blobs.objects)
}

func TestCreate_WritePathFailuresAreHard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.withListedLawyer("l1")
	u1 := models.ClientPrincipal("u1")

	env.cases.err = errors.New("insert failed")
	_, err := env.caseSvc.Create(ctx, u1, contractReview("l1"))
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)

	env.cases.err = nil
	env.blobs.err = errors.New("bucket unavailable")
	in := contractReview("l1")
	in.Attachment = attachment.Encode([]byte("%PDF-1.7"), "application/pdf")
	_, err = env.caseSvc.Create(ctx, u1, in)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Empty(t, env.cases.byID)
}

func TestCreate_InsertFailureRemovesUploadedAttachment(t *testing.T) {
	env := newTestEnv(t)
	env.withListedLawyer("l1")
	env.cases.err = errors.New("insert failed")

	in := contractReview("l1")
	in.Attachment = attachment.Encode([]byte("%PDF-1.7"), "application/pdf")
	_, err := env.caseSvc.Create(context.Background(), models.ClientPrincipal("u1"), in)

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, 0, env.blobs.count())
}

func TestCreate_QueueFailureIsBestEffort(t *testing.T) {
	env := newTestEnv(t)
	env.withListedLawyer("l1")
	env.tasks.err = errors.New("stream down")

	_, err := env.caseSvc.Create(context.Background(), models.ClientPrincipal("u1"), contractReview("l1"))
	assert.NoError(t, err)
}

func TestAttachment_StoredAndReturnedIntact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.withListedLawyer("l1")
	u1 := models.ClientPrincipal("u1")

	doc := []byte("%PDF-1.7\nsupplier agreement")
	in := contractReview("l1")
	in.Attachment = base64.StdEncoding.EncodeToString(doc)
	in.AttachmentMime = "application/pdf"

	c, err := env.caseSvc.Create(ctx, u1, in)
	require.NoError(t, err)
	require.NotNil(t, c.Attachment)
	assert.Equal(t, storage.AttachmentKey(c.ID), c.Attachment.ObjectKey)
	assert.Equal(t, "application/pdf", c.Attachment.Mime)
	assert.EqualValues(t, len(doc), c.Attachment.SizeBytes)

	for _, p := range []models.Principal{u1, models.LawyerPrincipal("l1")} {
		transport, ok, err := env.caseSvc.Attachment(ctx, p, c.ID)
		require.NoError(t, err)
		require.True(t, ok)
		raw, mime, err := attachment.Decode(transport, "")
		require.NoError(t, err)
		assert.Equal(t, doc, raw)
		assert.Equal(t, "application/pdf", mime)
	}

	_, _, err = env.caseSvc.Attachment(ctx, models.ClientPrincipal("u2"), c.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	env.blobs.objects[c.Attachment.ObjectKey] = blobObject{data: []byte("tampered"), mime: "application/pdf"}
	_, _, err = env.caseSvc.Attachment(ctx, u1, c.ID)
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
}

func TestAttachment_AbsentIsNotAnError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.withListedLawyer("l1")

	c, err := env.caseSvc.Create(ctx, models.ClientPrincipal("u1"), contractReview("l1"))
	require.NoError(t, err)

	_, ok, err := env.caseSvc.Attachment(ctx, models.ClientPrincipal("u1"), c.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLists_InsertionOrderAndRestartable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.withListedLawyer("l1")
	env.withListedLawyer("l2")
	u1 := models.ClientPrincipal("u1")

	var created []string
	for _, lawyer := range []string{"l1", "l2", "l1"} {
		c, err := env.caseSvc.Create(ctx, u1, contractReview(lawyer))
		require.NoError(t, err)
		created = append(created, c.ID)
	}
	_, err := env.caseSvc.Create(ctx, models.ClientPrincipal("u2"), contractReview("l1"))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		cases, err := env.caseSvc.ListForClient(ctx, u1)
		require.NoError(t, err)
		require.Len(t, cases, 3)
		for j, c := range cases {
			assert.Equal(t, created[j], c.ID)
		}
	}

	lawyerCases, err := env.caseSvc.ListForLawyer(ctx, models.LawyerPrincipal("l1"))
	require.NoError(t, err)
	require.Len(t, lawyerCases, 3)
	assert.Equal(t, created[0], lawyerCases[0].ID)
	assert.Equal(t, created[2], lawyerCases[1].ID)

	_, err = env.caseSvc.ListForClient(ctx, models.LawyerPrincipal("l1"))
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.caseSvc.ListForLawyer(ctx, u1)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLists_DegradeOnStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.cases.err = errors.New("db down")

	cases, err := env.caseSvc.ListForLawyer(ctx, models.LawyerPrincipal("l1"))
	require.NoError(t, err)
	assert.NotNil(t, cases)
	assert.Empty(t, cases)

	stats, err := env.caseSvc.Stats(ctx, models.LawyerPrincipal("l1"))
	require.NoError(t, err)
	assert.Equal(t, models.CaseStats{}, stats)
}

func TestStats_CountsDistinctClients(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.withListedLawyer("l1")

	for _, client := range []string{"u1", "u1", "u2"} {
		_, err := env.caseSvc.Create(ctx, models.ClientPrincipal(client), contractReview("l1"))
		require.NoError(t, err)
	}

	stats, err := env.caseSvc.Stats(ctx, models.LawyerPrincipal("l1"))
	require.NoError(t, err)
	assert.Equal(t, models.CaseStats{Cases: 3, Clients: 2}, stats)

	_, err = env.caseSvc.Stats(ctx, models.ClientPrincipal("u1"))
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestScheduleAppointment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	l1 := models.LawyerPrincipal("l1")
	at := time.Date(2026, 11, 2, 9, 30, 0, 0, time.UTC)

	require.NoError(t, env.cases.Create(ctx, models.Case{ID: "open", ClientID: "u1", LawyerID: "l1", Status: models.CaseStatusInProgress}))
	require.NoError(t, env.cases.Create(ctx, models.Case{ID: "done", ClientID: "u1", LawyerID: "l1", Status: models.CaseStatusCompleted}))

	c, err := env.caseSvc.ScheduleAppointment(ctx, l1, "open", AppointmentInput{Reference: "APT-17", At: at})
	require.NoError(t, err)
	require.NotNil(t, c.Appointment)
	assert.Equal(t, "APT-17", c.Appointment.Reference)
	assert.True(t, at.Equal(c.Appointment.At))

	_, err = env.caseSvc.ScheduleAppointment(ctx, l1, "done", AppointmentInput{Reference: "APT-18", At: at})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = env.caseSvc.ScheduleAppointment(ctx, models.LawyerPrincipal("l9"), "open", AppointmentInput{Reference: "APT-19", At: at})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = env.caseSvc.ScheduleAppointment(ctx, l1, "open", AppointmentInput{Reference: "APT-20"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestGet_AccessRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.cases.Create(ctx, models.Case{ID: "c1", ClientID: "u1", LawyerID: "l1", Status: models.CaseStatusPending}))

	for _, p := range []models.Principal{models.ClientPrincipal("u1"), models.LawyerPrincipal("l1")} {
		c, err := env.caseSvc.Get(ctx, p, "c1")
		require.NoError(t, err, p.String())
		assert.Equal(t, "c1", c.ID)
	}

	_, err := env.caseSvc.Get(ctx, models.ClientPrincipal("u2"), "c1")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.caseSvc.Get(ctx, models.LawyerPrincipal("l2"), "c1")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = env.caseSvc.Get(ctx, models.Anonymous(), "c1")
	assert.ErrorIs(t, err, ErrUnauthenticated)
	_, err = env.caseSvc.Get(ctx, models.ClientPrincipal("u1"), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}
