package factor

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/carbonlog/internal/model"
)

// mockStore はStoreのモック実装。
type mockStore struct {
	factors  map[string]model.EmissionFactor
	findErr  error
	insertFn func(ctx context.Context, f *model.EmissionFactor) error
	listErr  error
}

func newMockStore() *mockStore {
	return &mockStore{factors: make(map[string]model.EmissionFactor)}
}

func storeKey(category, subcategory, region string) string {
	return category + "|" + subcategory + "|" + region
}

func (m *mockStore) FindByKey(ctx context.Context, category, subcategory, region string) (*model.EmissionFactor, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if f, ok := m.factors[storeKey(category, subcategory, region)]; ok {
		return &f, nil
	}
	return nil, nil
}

func (m *mockStore) Insert(ctx context.Context, f *model.EmissionFactor) error {
	if m.insertFn != nil {
		if err := m.insertFn(ctx, f); err != nil {
			return err
		}
	}
	m.factors[storeKey(f.Category, f.Subcategory, f.Region)] = *f
	return nil
}

func (m *mockStore) ListAll(ctx context.Context) ([]model.EmissionFactor, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	factors := make([]model.EmissionFactor, 0, len(m.factors))
	for _, f := range m.factors {
		factors = append(factors, f)
	}
	return factors, nil
}

// TestDefaults_ContainsCanonicalFactors は正規セットに主要な係数が含まれることを検証する。
func TestDefaults_ContainsCanonicalFactors(t *testing.T) {
	defaults := Defaults()

	if len(defaults) != 11 {
		t.Errorf("len(Defaults()) = %d, want 11", len(defaults))
	}

	want := map[string]float64{
		"electricity|Global": 0.5,
		"electricity|Kenya":  0.18,
		"gasoline_car|":      2.31,
		"diesel_car|":        2.68,
		"electric_car|":      0.05,
		"electronics|":       50.0,
		"clothing|":          15.0,
	}
	for _, f := range defaults {
		if v, ok := want["electricity|"+f.Region]; ok && f.Category == "electricity" {
			if f.FactorValue != v {
				t.Errorf("electricity@%s = %g, want %g", f.Region, f.FactorValue, v)
			}
			continue
		}
		if v, ok := want[f.Category+"|"]; ok {
			if f.FactorValue != v {
				t.Errorf("%s = %g, want %g", f.Category, f.FactorValue, v)
			}
		}
	}
}

// TestSyncStore_InsertsMissingFactors は未登録の係数が挿入されることを検証する。
func TestSyncStore_InsertsMissingFactors(t *testing.T) {
	store := newMockStore()

	inserted, err := SyncStore(context.Background(), store, Defaults())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if inserted != len(Defaults()) {
		t.Errorf("inserted = %d, want %d", inserted, len(Defaults()))
	}
}

// TestSyncStore_Idempotent は再実行しても重複挿入されないことを検証する。
func TestSyncStore_Idempotent(t *testing.T) {
	store := newMockStore()
	ctx := context.Background()

	if _, err := SyncStore(ctx, store, Defaults()); err != nil {
		t.Fatalf("first sync failed: %v", err)
	}

	inserted, err := SyncStore(ctx, store, Defaults())
	if err != nil {
		t.Fatalf("second sync failed: %v", err)
	}
	if inserted != 0 {
		t.Errorf("inserted = %d, want 0", inserted)
	}
	if len(store.factors) != len(Defaults()) {
		t.Errorf("store has %d factors, want %d", len(store.factors), len(Defaults()))
	}
}

// TestSyncStore_InsertError は挿入エラーが呼び出し元へ伝播することを検証する。
func TestSyncStore_InsertError(t *testing.T) {
	store := newMockStore()
	store.insertFn = func(ctx context.Context, f *model.EmissionFactor) error {
		return errors.New("insert failed")
	}

	_, err := SyncStore(context.Background(), store, Defaults())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// TestLoadRegistry_SeedsWhenEmpty は空ストアからの読み込みで
// 正規セットがシードされることを検証する。
func TestLoadRegistry_SeedsWhenEmpty(t *testing.T) {
	store := newMockStore()

	reg, err := LoadRegistry(context.Background(), store)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if reg.Len() != len(Defaults()) {
		t.Errorf("registry has %d factors, want %d", reg.Len(), len(Defaults()))
	}
	if len(store.factors) != len(Defaults()) {
		t.Errorf("store has %d factors, want %d", len(store.factors), len(Defaults()))
	}

	f, err := reg.Lookup("electricity", "", "Global")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if f.FactorValue != 0.5 {
		t.Errorf("FactorValue = %g, want 0.5", f.FactorValue)
	}
}

// TestLoadRegistry_UsesExistingFactors は既存データがある場合に
// シードせずそのまま読み込むことを検証する。
func TestLoadRegistry_UsesExistingFactors(t *testing.T) {
	store := newMockStore()
	if err := store.Insert(context.Background(), &model.EmissionFactor{
		Category:    "electricity",
		FactorValue: 0.42,
		Region:      "Global",
	}); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(context.Background(), store)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if reg.Len() != 1 {
		t.Errorf("registry has %d factors, want 1", reg.Len())
	}
	f, err := reg.Lookup("electricity", "", "Global")
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if f.FactorValue != 0.42 {
		t.Errorf("FactorValue = %g, want 0.42", f.FactorValue)
	}
}

// TestLoadRegistry_ListError はストア読み込みエラーが伝播することを検証する。
func TestLoadRegistry_ListError(t *testing.T) {
	store := newMockStore()
	store.listErr = errors.New("connection refused")

	_, err := LoadRegistry(context.Background(), store)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
