package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"bankeu-backend/internal/adapter/repository/mysql"
	"bankeu-backend/internal/domain/actor"
	"bankeu-backend/internal/domain/mirrorjob"
	"bankeu-backend/internal/domain/proposal"
	"bankeu-backend/internal/domain/questionnaire"
	"bankeu-backend/internal/domain/reviewer"
	"bankeu-backend/internal/domain/uow"
	"bankeu-backend/internal/domain/workflowerr"
	"bankeu-backend/internal/infrastructure/filestore"
	"bankeu-backend/internal/infrastructure/metrics"
	"bankeu-backend/internal/testutil/proposalmock"
	"bankeu-backend/internal/testutil/sqlitedb"
	"bankeu-backend/internal/testutil/uowmock"
	"bankeu-backend/internal/usecase/gate"
	"bankeu-backend/internal/usecase/mirror"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

var (
	now        = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	villager   = actor.Actor{ID: "desa-1", Role: proposal.AuthorityVillage, VillageID: "V"}
	dinas      = actor.Actor{ID: "dinas-1", Role: proposal.AuthorityDepartment}
	kecamatan  = actor.Actor{ID: "kec-1", Role: proposal.AuthoritySubdistrict}
	dpmd       = actor.Actor{ID: "dpmd-1", Role: proposal.AuthorityTopBody}
	otherVillg = actor.Actor{ID: "desa-2", Role: proposal.AuthorityVillage, VillageID: "W"}
)

type env struct {
	db        *gorm.DB
	uc        *Usecase
	gate      *gate.Usecase
	working   *filestore.Local
	reference *filestore.Local
	proposals *mysql.ProposalRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := sqlitedb.Open(t)
	tx := mysql.NewGormUoW(db)
	dir := t.TempDir()
	w, _ := filestore.NewLocal(filepath.Join(dir, "working"))
	r, _ := filestore.NewLocal(filepath.Join(dir, "reference"))
	mt := metrics.New(prometheus.NewRegistry())
	ms := mirror.NewService(w, r, tx, mt, mirror.Config{Timeout: time.Second, CopyAttempts: 1, MaxAttempts: 3})
	g := gate.NewUsecase(mysql.NewSettingRepository(db), nil, 0)
	props := mysql.NewProposalRepository(db)
	uc := NewUsecase(props, tx, g, ms, mt, 2026).WithClock(func() time.Time { return now })
	return &env{db: db, uc: uc, gate: g, working: w, reference: r, proposals: props}
}

func (e *env) create(t *testing.T, file string) *ProposalDTO {
	t.Helper()
	if file != "" {
		if err := e.working.Write(context.Background(), file, []byte("content of "+file)); err != nil {
			t.Fatal(err)
		}
	}
	dto, err := e.uc.CreateProposal(context.Background(), villager, CreateProposalInput{
		ActivityIDs:  []string{"A"},
		Title:        "Village road paving",
		Location:     "Dusun Krajan",
		Volume:       "350 m",
		BudgetAmount: 150_000_000,
		WorkingFile:  file,
	})
	if err != nil {
		t.Fatalf("CreateProposal: %v", err)
	}
	return dto
}

func (e *env) load(t *testing.T, proposalID string) *proposal.Proposal {
	t.Helper()
	p, err := e.proposals.GetByProposalID(context.Background(), proposalID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return p
}

func (e *env) decide(t *testing.T, a actor.Actor, proposalID string, dec proposal.Decision, notes string) *ProposalDTO {
	t.Helper()
	dto, err := e.uc.RecordDecision(context.Background(), a, DecisionInput{
		ProposalID: proposalID, Authority: a.Role, Decision: string(dec), Notes: notes,
	})
	if err != nil {
		t.Fatalf("RecordDecision(%s %s): %v", a.Role, dec, err)
	}
	return dto
}

func (e *env) setProfile(t *testing.T, prof *reviewer.Profile) {
	t.Helper()
	if err := mysql.NewReviewerRepository(e.db).Upsert(context.Background(), prof); err != nil {
		t.Fatal(err)
	}
}

func assertInvariants(t *testing.T, p *proposal.Proposal) {
	t.Helper()
	if err := p.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
}

func TestScenarios_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	created := e.create(t, "rab.pdf")
	if created.Stage != string(proposal.StageDraft) || created.Status != string(proposal.TrackDraft) ||
		created.Department.Status != "" || created.BudgetYear != 2026 {
		t.Fatalf("created: %+v", created)
	}
	pid := created.ProposalID

	// A: submit
	batch, err := e.uc.SubmitInitial(ctx, villager, "V")
	if err != nil {
		t.Fatalf("SubmitInitial: %v", err)
	}
	if batch.Count != 1 {
		t.Fatalf("count = %d", batch.Count)
	}
	p := e.load(t, pid)
	if p.Status != proposal.TrackPending || p.DepartmentStatus != proposal.TrackPending ||
		p.SubmittedToDepartmentAt == nil || !p.SubmittedToDepartmentAt.Equal(now) {
		t.Fatalf("scenario A: %+v", p)
	}
	assertInvariants(t, p)

	// B: department approves, reference mirrored inline
	dto := e.decide(t, dinas, pid, proposal.DecisionApproved, "technically sound")
	p = e.load(t, pid)
	if p.DepartmentStatus != proposal.TrackApproved || !p.SubmittedToSubdistrict || p.SubdistrictStatus != proposal.TrackPending {
		t.Fatalf("scenario B: %+v", p)
	}
	if p.ReferenceFile == nil || *p.ReferenceFile != "rab.pdf" {
		t.Fatalf("scenario B: reference_file = %v", p.ReferenceFile)
	}
	if dto.ReferenceFile == nil || *dto.ReferenceFile != "rab.pdf" {
		t.Fatalf("scenario B: response must carry the reference")
	}
	if b, err := e.reference.Read(ctx, "rab.pdf"); err != nil || string(b) != "content of rab.pdf" {
		t.Fatalf("reference copy = %q, %v", b, err)
	}
	assertInvariants(t, p)
	deptBefore := *p

	// C: subdistrict rejects
	e.decide(t, kecamatan, pid, proposal.DecisionRejected, "incomplete survey")
	p = e.load(t, pid)
	if p.SubdistrictStatus != proposal.TrackRejected || p.Status != proposal.TrackRejected ||
		p.SubmittedToSubdistrict || p.SubmittedToDepartmentAt != nil ||
		p.Stage != proposal.StageReturned || p.ReturnOrigin != proposal.AuthoritySubdistrict {
		t.Fatalf("scenario C: %+v", p)
	}
	if p.SubdistrictNotes == nil || *p.SubdistrictNotes != "incomplete survey" {
		t.Fatalf("scenario C: notes = %v", p.SubdistrictNotes)
	}
	assertInvariants(t, p)

	// D: resubmit without hint goes straight back to the subdistrict
	batch, err = e.uc.Resubmit(ctx, villager, "V", "")
	if err != nil {
		t.Fatalf("Resubmit: %v", err)
	}
	if batch.Policies[pid] != "retain-department-review" {
		t.Fatalf("policy = %v", batch.Policies)
	}
	p = e.load(t, pid)
	if p.Stage != proposal.StagePendingSubdistrict || p.SubdistrictStatus != proposal.TrackPending || !p.SubmittedToSubdistrict {
		t.Fatalf("scenario D: %+v", p)
	}
	if p.DepartmentStatus != deptBefore.DepartmentStatus ||
		*p.DepartmentBy != *deptBefore.DepartmentBy ||
		!p.DepartmentAt.Equal(*deptBefore.DepartmentAt) ||
		*p.DepartmentNotes != *deptBefore.DepartmentNotes {
		t.Fatal("scenario D: department fields must be untouched")
	}
	assertInvariants(t, p)

	// E: top body approval needs a complete profile
	e.decide(t, kecamatan, pid, proposal.DecisionApproved, "")
	e.setProfile(t, &reviewer.Profile{ActorID: dpmd.ID, Authority: proposal.AuthorityTopBody, Name: "Head", RoleTitle: "Kepala"})
	before := e.load(t, pid)
	_, err = e.uc.RecordDecision(ctx, dpmd, DecisionInput{ProposalID: pid, Authority: proposal.AuthorityTopBody, Decision: "approved"})
	if !errors.Is(err, proposal.ErrProfileIncomplete) {
		t.Fatalf("scenario E: want ErrProfileIncomplete, got %v", err)
	}
	if st := workflowerr.StateOf(err); st == nil || st.Stage != string(proposal.StagePendingTopBody) {
		t.Fatalf("scenario E: state not echoed: %+v", st)
	}
	after := e.load(t, pid)
	if after.Status != before.Status || after.TopBodyStatus != before.TopBodyStatus || after.Version != before.Version {
		t.Fatal("scenario E: refused approval must not change the proposal")
	}

	e.setProfile(t, &reviewer.Profile{ActorID: dpmd.ID, Authority: proposal.AuthorityTopBody, Name: "Head", RoleTitle: "Kepala", SignatureFile: "ttd.png"})
	e.decide(t, dpmd, pid, proposal.DecisionApproved, "")
	p = e.load(t, pid)
	if p.Stage != proposal.StageVerified || p.Status != proposal.TrackVerified || p.TopBodyStatus != proposal.TrackApproved {
		t.Fatalf("verified: %+v", p)
	}
	assertInvariants(t, p)

	if err := e.uc.DeleteProposal(ctx, villager, pid); !errors.Is(err, proposal.ErrNotDeletable) {
		t.Fatalf("verified proposal must not be deletable: %v", err)
	}
}

func TestGateClosed_NothingChanges(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	pending := e.create(t, "a.pdf")
	returned := e.create(t, "b.pdf")
	if _, err := e.uc.SubmitInitial(ctx, villager, "V"); err != nil {
		t.Fatal(err)
	}
	e.decide(t, dinas, returned.ProposalID, proposal.DecisionRevision, "fix drawings")
	third := e.create(t, "c.pdf")

	if _, err := e.gate.SetOpen(ctx, dpmd, false); err != nil {
		t.Fatalf("close gate: %v", err)
	}
	snap := func() map[string]proposal.Proposal {
		out := map[string]proposal.Proposal{}
		for _, id := range []string{pending.ProposalID, returned.ProposalID, third.ProposalID} {
			out[id] = *e.load(t, id)
		}
		return out
	}
	before := snap()

	if _, err := e.uc.SubmitInitial(ctx, villager, "V"); !errors.Is(err, gate.ErrSubmissionClosed) {
		t.Fatalf("SubmitInitial: want ErrSubmissionClosed, got %v", err)
	}
	if _, err := e.uc.Resubmit(ctx, villager, "V", ""); !errors.Is(err, gate.ErrSubmissionClosed) {
		t.Fatalf("Resubmit: want ErrSubmissionClosed, got %v", err)
	}
	// the gate wins over a malformed hint
	_, err := e.uc.Resubmit(ctx, villager, "V", "topbody")
	if !errors.Is(err, gate.ErrSubmissionClosed) || workflowerr.KindOf(err) != workflowerr.KindStateConflict {
		t.Fatalf("Resubmit bad hint: want ErrSubmissionClosed, got %v", err)
	}
	if after := snap(); !reflect.DeepEqual(before, after) {
		t.Fatalf("closed gate must not touch any proposal")
	}

	if _, err := e.gate.SetOpen(ctx, dpmd, true); err != nil {
		t.Fatal(err)
	}
	if _, err := e.uc.Resubmit(ctx, villager, "V", ""); err != nil {
		t.Fatalf("Resubmit after reopening: %v", err)
	}
}

func TestSubmitInitial_Eligibility(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	_, err := e.uc.SubmitInitial(ctx, villager, "V")
	if !errors.Is(err, proposal.ErrNoEligibleProposals) || workflowerr.KindOf(err) != workflowerr.KindStateConflict {
		t.Fatalf("want ErrNoEligibleProposals conflict, got %v", err)
	}

	// last year's draft is not part of the active cycle
	old, err := e.uc.CreateProposal(ctx, villager, CreateProposalInput{ActivityIDs: []string{"A"}, Title: "Old", BudgetYear: 2025})
	if err != nil {
		t.Fatal(err)
	}
	cur := e.create(t, "")
	batch, err := e.uc.SubmitInitial(ctx, villager, "V")
	if err != nil {
		t.Fatalf("SubmitInitial: %v", err)
	}
	if batch.Count != 1 || batch.Proposals[0].ProposalID != cur.ProposalID {
		t.Fatalf("batch = %+v", batch)
	}
	if p := e.load(t, old.ProposalID); p.Stage != proposal.StageDraft {
		t.Fatalf("old-cycle draft submitted: %s", p.Stage)
	}
}

func TestResubmit_HintValidation(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	d := e.create(t, "rab.pdf")
	if _, err := e.uc.SubmitInitial(ctx, villager, "V"); err != nil {
		t.Fatal(err)
	}
	e.decide(t, dinas, d.ProposalID, proposal.DecisionRejected, "")

	_, err := e.uc.Resubmit(ctx, villager, "V", "subdistrict")
	if !errors.Is(err, proposal.ErrInvalidDestination) || workflowerr.KindOf(err) != workflowerr.KindValidation {
		t.Fatalf("want validation error, got %v", err)
	}
	if p := e.load(t, d.ProposalID); p.Stage != proposal.StageReturned {
		t.Fatal("failed resubmit must roll back")
	}
	if _, err := e.uc.Resubmit(ctx, villager, "V", "topbody"); !errors.Is(err, proposal.ErrInvalidDestination) {
		t.Fatalf("topbody hint: %v", err)
	}

	batch, err := e.uc.Resubmit(ctx, villager, "V", "department")
	if err != nil {
		t.Fatalf("Resubmit: %v", err)
	}
	if batch.Policies[d.ProposalID] != "full-restart" {
		t.Fatalf("policy = %v", batch.Policies)
	}
	if _, err := e.uc.Resubmit(ctx, villager, "V", ""); !errors.Is(err, proposal.ErrNoEligibleProposals) {
		t.Fatalf("nothing left to resubmit: %v", err)
	}
}

func TestResubmit_ResetsReopenedQuestionnaires(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	d := e.create(t, "rab.pdf")
	if _, err := e.uc.SubmitInitial(ctx, villager, "V"); err != nil {
		t.Fatal(err)
	}
	e.decide(t, dinas, d.ProposalID, proposal.DecisionApproved, "")
	e.decide(t, kecamatan, d.ProposalID, proposal.DecisionRevision, "")

	p := e.load(t, d.ProposalID)
	qs := mysql.NewQuestionnaireRepository(e.db)
	for _, a := range []proposal.Authority{proposal.AuthorityDepartment, proposal.AuthoritySubdistrict} {
		q := &questionnaire.Questionnaire{ProposalID: p.ID, Authority: a, Status: questionnaire.StatusSubmitted}
		q.SetAnswers(nil)
		if err := qs.Upsert(ctx, q); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := e.uc.Resubmit(ctx, villager, "V", ""); err != nil {
		t.Fatal(err)
	}
	dept, _ := qs.Get(ctx, p.ID, proposal.AuthorityDepartment)
	sub, _ := qs.Get(ctx, p.ID, proposal.AuthoritySubdistrict)
	if dept.Status != questionnaire.StatusSubmitted {
		t.Fatal("department questionnaire must be kept on a subdistrict-origin resubmit")
	}
	if sub.Status != questionnaire.StatusDraft {
		t.Fatal("subdistrict questionnaire must be reopened")
	}
}

func TestRecordDecision_Refusals(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	d := e.create(t, "rab.pdf")
	if _, err := e.uc.SubmitInitial(ctx, villager, "V"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		actor    actor.Actor
		in       DecisionInput
		wantErr  error
		wantKind workflowerr.Kind
	}{
		{"unknown proposal", dinas, DecisionInput{ProposalID: "nope", Authority: proposal.AuthorityDepartment, Decision: "approved"},
			proposal.ErrNotFound, workflowerr.KindNotFound},
		{"invalid decision", dinas, DecisionInput{ProposalID: d.ProposalID, Authority: proposal.AuthorityDepartment, Decision: "maybe"},
			proposal.ErrInvalidDecision, workflowerr.KindValidation},
		{"deciding for another authority", dinas, DecisionInput{ProposalID: d.ProposalID, Authority: proposal.AuthoritySubdistrict, Decision: "approved"},
			proposal.ErrNotOwner, workflowerr.KindAuthorization},
		{"village cannot decide", villager, DecisionInput{ProposalID: d.ProposalID, Authority: proposal.AuthorityVillage, Decision: "approved"},
			proposal.ErrWrongAuthority, workflowerr.KindValidation},
		{"not the current holder", kecamatan, DecisionInput{ProposalID: d.ProposalID, Authority: proposal.AuthoritySubdistrict, Decision: "approved"},
			proposal.ErrWrongAuthority, workflowerr.KindStateConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.uc.RecordDecision(ctx, tt.actor, tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if got := workflowerr.KindOf(err); got != tt.wantKind {
				t.Fatalf("kind = %q, want %q", got, tt.wantKind)
			}
		})
	}

	_, err := e.uc.RecordDecision(ctx, kecamatan, DecisionInput{ProposalID: d.ProposalID, Authority: proposal.AuthoritySubdistrict, Decision: "approved"})
	st := workflowerr.StateOf(err)
	if st == nil || st.Stage != string(proposal.StagePendingDepartment) || st.DepartmentStatus != "pending" {
		t.Fatalf("conflict must echo the current state: %+v", st)
	}
}

func TestRecordDecision_MirrorFailureDoesNotFailApproval(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	d := e.create(t, "")
	if _, err := e.uc.UpdateContent(ctx, villager, UpdateContentInput{
		ProposalID: d.ProposalID, ActivityIDs: []string{"A"}, Title: "t", WorkingFile: "never-uploaded.pdf",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.uc.SubmitInitial(ctx, villager, "V"); err != nil {
		t.Fatal(err)
	}

	dto := e.decide(t, dinas, d.ProposalID, proposal.DecisionApproved, "")
	if dto.Department.Status != "approved" || dto.ReferenceFile != nil {
		t.Fatalf("dto = %+v", dto)
	}
	p := e.load(t, d.ProposalID)
	if p.DepartmentStatus != proposal.TrackApproved || p.ReferenceFile != nil {
		t.Fatalf("approval must commit without a reference: %+v", p)
	}
	var jobs []mirrorjob.Job
	if err := e.db.Find(&jobs).Error; err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].Status != mirrorjob.StatusPending || jobs[0].Attempts != 1 {
		t.Fatalf("job must stay pending for the drainer: %+v", jobs)
	}
}

func TestProposalCRUD(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	if _, err := e.uc.CreateProposal(ctx, dinas, CreateProposalInput{VillageID: "V", ActivityIDs: []string{"A"}, Title: "x"}); workflowerr.KindOf(err) != workflowerr.KindAuthorization {
		t.Fatalf("reviewers cannot create: %v", err)
	}
	if _, err := e.uc.CreateProposal(ctx, villager, CreateProposalInput{Title: "x"}); !errors.Is(err, proposal.ErrInvalidProposalInput) {
		t.Fatalf("activity required: %v", err)
	}
	if _, err := e.uc.CreateProposal(ctx, villager, CreateProposalInput{VillageID: "W", ActivityIDs: []string{"A"}, Title: "x"}); workflowerr.KindOf(err) != workflowerr.KindAuthorization {
		t.Fatalf("other village: %v", err)
	}

	d := e.create(t, "../uploads/rab.pdf")
	if d.WorkingFile != "rab.pdf" {
		t.Fatalf("working file not cleaned: %q", d.WorkingFile)
	}

	if _, err := e.uc.GetProposal(ctx, otherVillg, d.ProposalID); workflowerr.KindOf(err) != workflowerr.KindAuthorization {
		t.Fatalf("other village read: %v", err)
	}
	if got, err := e.uc.GetProposal(ctx, dinas, d.ProposalID); err != nil || got.ProposalID != d.ProposalID {
		t.Fatalf("reviewer read: %v", err)
	}
	list, err := e.uc.ListProposals(ctx, villager, "", proposal.ListFilter{Stage: proposal.StageDraft})
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}

	upd, err := e.uc.UpdateContent(ctx, villager, UpdateContentInput{ProposalID: d.ProposalID, ActivityIDs: []string{"A", "B"}, Title: "Road v2"})
	if err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	if upd.Title != "Road v2" || len(upd.ActivityIDs) != 2 || upd.WorkingFile != "rab.pdf" || upd.Version != d.Version+1 {
		t.Fatalf("updated = %+v", upd)
	}

	if _, err := e.uc.SubmitInitial(ctx, villager, "V"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.uc.UpdateContent(ctx, villager, UpdateContentInput{ProposalID: d.ProposalID, ActivityIDs: []string{"A"}, Title: "x"}); !errors.Is(err, proposal.ErrNotEditable) {
		t.Fatalf("edit under review: %v", err)
	}
	if err := e.uc.DeleteProposal(ctx, villager, d.ProposalID); !errors.Is(err, proposal.ErrNotDeletable) {
		t.Fatalf("delete under review: %v", err)
	}

	e.decide(t, dinas, d.ProposalID, proposal.DecisionRejected, "")
	if err := e.uc.DeleteProposal(ctx, otherVillg, d.ProposalID); workflowerr.KindOf(err) != workflowerr.KindAuthorization {
		t.Fatalf("delete by other village: %v", err)
	}
	if err := e.uc.DeleteProposal(ctx, villager, d.ProposalID); err != nil {
		t.Fatalf("delete returned-by-department: %v", err)
	}
	if _, err := e.uc.GetProposal(ctx, villager, d.ProposalID); !errors.Is(err, proposal.ErrNotFound) {
		t.Fatalf("deleted proposal still visible: %v", err)
	}
}

type openGate struct{}

func (openGate) Check(context.Context) error { return nil }

func TestRecordDecision_StaleVersion(t *testing.T) {
	p := pendingAt(proposal.StagePendingDepartment)
	p.VillageID = "V"
	props := &proposalmock.Repo{
		GetByProposalIDForUpdateFn: func(context.Context, string) (*proposal.Proposal, error) { return p, nil },
		UpdateFn:                   func(context.Context, *proposal.Proposal) error { return proposal.ErrStaleProposal },
	}
	tx := uowmock.Passthrough(uow.Repos{Proposals: props})
	uc := NewUsecase(props, tx, openGate{}, nil, nil, 2026)

	_, err := uc.RecordDecision(context.Background(), dinas, DecisionInput{ProposalID: "P1", Authority: proposal.AuthorityDepartment, Decision: "approved"})
	if !errors.Is(err, proposal.ErrStaleProposal) || workflowerr.KindOf(err) != workflowerr.KindStateConflict {
		t.Fatalf("want stale conflict, got %v", err)
	}
}

func TestSubmitInitial_StoreErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	props := &proposalmock.Repo{
		ListForUpdateFn: func(context.Context, string, proposal.ListFilter) ([]*proposal.Proposal, error) { return nil, boom },
	}
	uc := NewUsecase(props, uowmock.Passthrough(uow.Repos{Proposals: props}), openGate{}, nil, nil, 2026)
	if _, err := uc.SubmitInitial(context.Background(), villager, "V"); !errors.Is(err, boom) {
		t.Fatalf("want store error, got %v", err)
	}
	if _, err := uc.SubmitInitial(context.Background(), otherVillg, "V"); workflowerr.KindOf(err) != workflowerr.KindAuthorization {
		t.Fatalf("foreign village: %v", err)
	}
}
