package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/user/pagetable-service/internal/entity"
)

func newTestDispatcher() (Dispatcher, *fakeJobRepo, *fakeQueueRepo) {
	jobRepo := newFakeJobRepo()
	queueRepo := &fakeQueueRepo{}
	return NewDispatcher(DefaultActionCatalog(), jobRepo, queueRepo), jobRepo, queueRepo
}

func TestDispatchPersistsAndEnqueuesJob(t *testing.T) {
	dispatcher, jobRepo, queueRepo := newTestDispatcher()

	jobID, dispatched, err := dispatcher.Execute(context.Background(), "export", []string{"2"}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !dispatched || jobID == "" {
		t.Fatalf("dispatched=%v jobID=%q", dispatched, jobID)
	}

	job, ok := jobRepo.jobs[jobID]
	if !ok {
		t.Fatalf("job %s not persisted", jobID)
	}
	if job.Status != entity.JobStatusPending {
		t.Errorf("status = %s, want pending", job.Status)
	}
	if job.Kind != entity.ActionKindExport {
		t.Errorf("kind = %s, want export", job.Kind)
	}
	if !reflect.DeepEqual(job.PageIDs, []string{"2"}) {
		t.Errorf("page ids = %v", job.PageIDs)
	}
	if queueRepo.pushCalls != 1 || queueRepo.ids[0] != jobID {
		t.Errorf("queue = %v (pushes %d), want [%s]", queueRepo.ids, queueRepo.pushCalls, jobID)
	}
}

func TestDispatchEmptySelectionIsNoOp(t *testing.T) {
	dispatcher, jobRepo, queueRepo := newTestDispatcher()

	jobID, dispatched, err := dispatcher.Execute(context.Background(), "export", nil, nil)
	if err != nil {
		t.Fatalf("empty selection must not be an error, got %v", err)
	}
	if dispatched || jobID != "" {
		t.Fatalf("dispatched=%v jobID=%q, want false and empty", dispatched, jobID)
	}
	if jobRepo.saveCalls != 0 || queueRepo.pushCalls != 0 {
		t.Fatalf("side effects on empty selection: saves=%d pushes=%d", jobRepo.saveCalls, queueRepo.pushCalls)
	}
}

func TestDispatchDeduplicatesSelection(t *testing.T) {
	dispatcher, jobRepo, _ := newTestDispatcher()

	jobID, _, err := dispatcher.Execute(context.Background(), "publish", []string{"b", "a", "b", "a"}, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got := jobRepo.jobs[jobID].PageIDs; !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("page ids = %v, want deduplicated [a b]", got)
	}
}

func TestDispatchUnknownAction(t *testing.T) {
	dispatcher, jobRepo, queueRepo := newTestDispatcher()

	_, _, err := dispatcher.Execute(context.Background(), "delete_everything", []string{"1"}, nil)
	if !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("err = %v, want ErrUnknownAction", err)
	}
	if jobRepo.saveCalls != 0 || queueRepo.pushCalls != 0 {
		t.Fatal("unknown action must not persist or enqueue")
	}
}

func TestDispatchMergesParamsOverDefaults(t *testing.T) {
	dispatcher, jobRepo, _ := newTestDispatcher()

	jobID, _, err := dispatcher.Execute(context.Background(), "run_template", []string{"1"}, map[string]any{
		"variants":    float64(3),
		"template_id": "rewrite-titles",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	params := jobRepo.jobs[jobID].Params
	if params["variants"] != float64(3) {
		t.Errorf("variants = %v, want override 3", params["variants"])
	}
	if params["template_id"] != "rewrite-titles" {
		t.Errorf("template_id = %v", params["template_id"])
	}
	if _, ok := params["context_columns"]; !ok {
		t.Error("default context_columns dropped by merge")
	}
}

func TestCatalogListsAllActions(t *testing.T) {
	dispatcher, _, _ := newTestDispatcher()

	catalog := dispatcher.Catalog()
	if len(catalog) != 3 {
		t.Fatalf("catalog size = %d, want 3", len(catalog))
	}
	seen := make(map[string]bool, len(catalog))
	for _, a := range catalog {
		seen[a.ID] = true
	}
	for _, id := range []string{"run_template", "export", "publish"} {
		if !seen[id] {
			t.Errorf("catalog missing action %q", id)
		}
	}
}
