package domain_test

import (
	"testing"

	"github.com/padocode/go-tenant-repository/domain"
)

func TestCategories_ListInDisplayOrder(t *testing.T) {
	env := newDomainEnv(t)
	categories := domain.NewCategories(env.container.Repository())
	ctx := asTenant("loja-1")

	for _, c := range []domain.Category{
		{Name: "Sobremesas", Position: 3},
		{Name: "Pratos", Position: 1},
		{Name: "Bebidas", Position: 2},
	} {
		if _, err := categories.Create(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	list, err := categories.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 categories, got %d", len(list))
	}
	if list[0].Name != "Pratos" || list[1].Name != "Bebidas" || list[2].Name != "Sobremesas" {
		t.Errorf("unexpected display order: %v, %v, %v", list[0].Name, list[1].Name, list[2].Name)
	}
}

func TestCategories_Rename(t *testing.T) {
	env := newDomainEnv(t)
	categories := domain.NewCategories(env.container.Repository())
	ctx := asTenant("loja-1")

	created, err := categories.Create(ctx, domain.Category{Name: "Pratos", Position: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := categories.Rename(ctx, created.ID, "Pratos Principais"); err != nil {
		t.Fatal(err)
	}

	list, err := categories.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Name != "Pratos Principais" {
		t.Errorf("rename not visible, got %v", list)
	}
	if list[0].Position != 1 {
		t.Errorf("rename must not clobber position, got %d", list[0].Position)
	}
}
