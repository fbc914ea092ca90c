package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir() // Automatically cleaned up after test
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	return store, tempDir
}

// createTestRecord creates a run record with test data.
func createTestRecord(runID string) *RunRecord {
	return &RunRecord{
		RunID: runID,
		Config: RunConfig{
			Problem: "ellipsoid",
			Method:  "lbfgs",
			Tol:     1e-3,
			MaxIter: 1000,
			Weights: []float64{1, 10, 100},
		},
		Fun:         0.0234,
		GradNorm:    4.2e-4,
		Iterations:  57,
		Success:     true,
		Dofs:        []float64{1.19, 0.81, 1.01},
		Label:       6.2832,
		TargetLabel: 6.2832,
		Timestamp:   time.Now(),
	}
}

func TestNewFSStore(t *testing.T) {
	tempDir := t.TempDir()

	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}

	if store == nil {
		t.Fatal("Expected non-nil store")
	}

	// Verify base directory was created
	if _, err := os.Stat(tempDir); os.IsNotExist(err) {
		t.Fatal("Base directory was not created")
	}
}

func TestSaveResult(t *testing.T) {
	store, tempDir := setupTestStore(t)

	runID := "test-run-123"
	record := createTestRecord(runID)

	err := store.SaveResult(runID, record)
	if err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	// Verify result file exists
	expectedPath := filepath.Join(tempDir, "runs", runID, "result.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Result file was not created at %s", expectedPath)
	}

	// Verify no temp file remains
	tempPath := expectedPath + ".tmp"
	if _, err := os.Stat(tempPath); !os.IsNotExist(err) {
		t.Errorf("Temp file should not exist after save: %s", tempPath)
	}
}

func TestSaveResult_EmptyRunID(t *testing.T) {
	store, _ := setupTestStore(t)
	record := createTestRecord("any-id")

	err := store.SaveResult("", record)
	if err == nil {
		t.Fatal("Expected error for empty runID")
	}
}

func TestSaveResult_NilRecord(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.SaveResult("test-run", nil)
	if err == nil {
		t.Fatal("Expected error for nil record")
	}
}

func TestSaveResult_Overwrite(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "test-run-overwrite"
	record1 := createTestRecord(runID)
	record1.Fun = 0.5

	record2 := createTestRecord(runID)
	record2.Fun = 0.1

	if err := store.SaveResult(runID, record1); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	if err := store.SaveResult(runID, record2); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	// Load and verify it's the second record
	loaded, err := store.LoadResult(runID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Fun != 0.1 {
		t.Errorf("Expected Fun=0.1, got %f", loaded.Fun)
	}
}

func TestLoadResult(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "test-run-load"
	original := createTestRecord(runID)

	if err := store.SaveResult(runID, original); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	loaded, err := store.LoadResult(runID)
	if err != nil {
		t.Fatalf("LoadResult failed: %v", err)
	}

	// Verify loaded record matches original
	if loaded.RunID != original.RunID {
		t.Errorf("RunID mismatch: expected %s, got %s", original.RunID, loaded.RunID)
	}
	if loaded.Fun != original.Fun {
		t.Errorf("Fun mismatch: expected %f, got %f", original.Fun, loaded.Fun)
	}
	if loaded.Iterations != original.Iterations {
		t.Errorf("Iterations mismatch: expected %d, got %d", original.Iterations, loaded.Iterations)
	}
	if len(loaded.Dofs) != len(original.Dofs) {
		t.Errorf("Dofs length mismatch: expected %d, got %d", len(original.Dofs), len(loaded.Dofs))
	}
	if loaded.Config.Method != original.Config.Method {
		t.Errorf("Config.Method mismatch: expected %s, got %s", original.Config.Method, loaded.Config.Method)
	}
	if loaded.TargetLabel != original.TargetLabel {
		t.Errorf("TargetLabel mismatch: expected %f, got %f", original.TargetLabel, loaded.TargetLabel)
	}
}

func TestLoadResult_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadResult("nonexistent-run")
	if err == nil {
		t.Fatal("Expected error for nonexistent record")
	}

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError, got %T: %v", err, err)
	}
}

func TestLoadResult_EmptyRunID(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadResult("")
	if err == nil {
		t.Fatal("Expected error for empty runID")
	}
}

func TestListResults_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	infos, err := store.ListResults()
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}

	if len(infos) != 0 {
		t.Errorf("Expected empty list, got %d records", len(infos))
	}
}

func TestListResults_Multiple(t *testing.T) {
	store, _ := setupTestStore(t)

	runs := []string{"run-1", "run-2", "run-3"}
	for _, runID := range runs {
		record := createTestRecord(runID)
		if err := store.SaveResult(runID, record); err != nil {
			t.Fatalf("Failed to save record %s: %v", runID, err)
		}
	}

	infos, err := store.ListResults()
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}

	if len(infos) != len(runs) {
		t.Errorf("Expected %d records, got %d", len(runs), len(infos))
	}

	// Verify all run IDs are present
	foundRuns := make(map[string]bool)
	for _, info := range infos {
		foundRuns[info.RunID] = true
	}

	for _, runID := range runs {
		if !foundRuns[runID] {
			t.Errorf("Run %s not found in list", runID)
		}
	}
}

func TestListResults_SkipsInvalidDirectories(t *testing.T) {
	store, tempDir := setupTestStore(t)

	// Create valid record
	validRunID := "valid-run"
	record := createTestRecord(validRunID)
	if err := store.SaveResult(validRunID, record); err != nil {
		t.Fatalf("Failed to save valid record: %v", err)
	}

	// Create directory without result.json
	invalidRunDir := filepath.Join(tempDir, "runs", "invalid-run")
	if err := os.MkdirAll(invalidRunDir, 0755); err != nil {
		t.Fatalf("Failed to create invalid run directory: %v", err)
	}

	// Create non-directory file in runs directory
	runsDir := filepath.Join(tempDir, "runs")
	dummyFile := filepath.Join(runsDir, "dummy.txt")
	if err := os.WriteFile(dummyFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create dummy file: %v", err)
	}

	// List should only return valid record
	infos, err := store.ListResults()
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}

	if len(infos) != 1 {
		t.Errorf("Expected 1 record, got %d", len(infos))
	}

	if len(infos) > 0 && infos[0].RunID != validRunID {
		t.Errorf("Expected runID %s, got %s", validRunID, infos[0].RunID)
	}
}

func TestDeleteResult(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "test-run-delete"
	record := createTestRecord(runID)

	if err := store.SaveResult(runID, record); err != nil {
		t.Fatalf("SaveResult failed: %v", err)
	}

	err := store.DeleteResult(runID)
	if err != nil {
		t.Fatalf("DeleteResult failed: %v", err)
	}

	// Verify record no longer exists
	_, err = store.LoadResult(runID)
	if err == nil {
		t.Fatal("Expected error when loading deleted record")
	}

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError, got %T: %v", err, err)
	}
}

func TestDeleteResult_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.DeleteResult("nonexistent-run")
	if err == nil {
		t.Fatal("Expected error for nonexistent record")
	}

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected NotFoundError, got %T: %v", err, err)
	}
}

func TestDeleteResult_EmptyRunID(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.DeleteResult("")
	if err == nil {
		t.Fatal("Expected error for empty runID")
	}
}

func TestConcurrentSave(t *testing.T) {
	store, _ := setupTestStore(t)

	// Save multiple records concurrently
	const numRuns = 10
	done := make(chan bool, numRuns)

	for i := 0; i < numRuns; i++ {
		go func(idx int) {
			runID := fmt.Sprintf("concurrent-run-%d", idx)
			record := createTestRecord(runID)
			if err := store.SaveResult(runID, record); err != nil {
				t.Errorf("Concurrent save failed for run %s: %v", runID, err)
			}
			done <- true
		}(i)
	}

	// Wait for all goroutines
	for i := 0; i < numRuns; i++ {
		<-done
	}

	// Verify all records were saved
	infos, err := store.ListResults()
	if err != nil {
		t.Fatalf("ListResults failed: %v", err)
	}

	if len(infos) != numRuns {
		t.Errorf("Expected %d records, got %d", numRuns, len(infos))
	}
}
