package service

import (
	"context"
	"errors"
	"testing"

	"github.com/meninojhony/modec-challenger/model"
)

func TestCategoryCreateAndGet(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	category, err := svc.Create(ctx, "IT Services", "Information technology")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if category.ID == 0 {
		t.Errorf("id should be assigned")
	}

	got, err := svc.Get(ctx, category.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Name != "IT Services" || got.Description != "Information technology" {
		t.Errorf("category = %+v", got)
	}
}

func TestCategoryCreateValidation(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", "no name"); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty name should be invalid, got %v", err)
	}

	if _, err := svc.Create(ctx, "Maintenance", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, "Maintenance", "again"); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate name should conflict, got %v", err)
	}
}

func TestCategoryUpdate(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	first, err := svc.Create(ctx, "Logistics", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := svc.Create(ctx, "Facilities", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newName := "Transport"
	newDescription := "Transport and logistics"
	updated, err := svc.Update(ctx, first.ID, &newName, &newDescription)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Transport" || updated.Description != "Transport and logistics" {
		t.Errorf("updated = %+v", updated)
	}

	takenName := "Transport"
	if _, err := svc.Update(ctx, second.ID, &takenName, nil); !errors.Is(err, ErrConflict) {
		t.Errorf("taking another category's name should conflict, got %v", err)
	}

	if _, err := svc.Update(ctx, 99, &newName, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown category should be not found, got %v", err)
	}
}

func TestCategoryDeleteRefusedWhileReferenced(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewCategoryService(repo)
	ctx := context.Background()

	category, err := svc.Create(ctx, "Consulting", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	contract := &model.Contract{
		ID: "c1", ContractNumber: "CT-001", CategoryID: category.ID,
		StartDate: model.NewDate(2024, 1, 1), EndDate: model.NewDate(2025, 1, 1),
	}
	if err := repo.CreateContract(ctx, contract); err != nil {
		t.Fatalf("failed to seed contract: %v", err)
	}

	if err := svc.Delete(ctx, category.ID); !errors.Is(err, ErrConflict) {
		t.Errorf("deleting a referenced category should conflict, got %v", err)
	}

	if _, err := repo.DeleteContract(ctx, "c1"); err != nil {
		t.Fatalf("failed to remove contract: %v", err)
	}
	if err := svc.Delete(ctx, category.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, category.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted category should be gone, got %v", err)
	}
}

func TestCategoryDeleteUnknown(t *testing.T) {
	svc := NewCategoryService(NewMemoryRepository())
	if err := svc.Delete(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown category should be not found, got %v", err)
	}
}
