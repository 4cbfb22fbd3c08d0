package app_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/neomorfeo/catalogue/internal/adapter/fsm"
	"github.com/neomorfeo/catalogue/internal/adapter/sqlite"
	"github.com/neomorfeo/catalogue/internal/app"
	"github.com/neomorfeo/catalogue/internal/domain"
)

// --- Mocks ---

type mockRepo[T any, P domain.Record[T]] struct {
	records map[string]T
	creates int
	// failCreate, when set, decides the error of the n-th insert (1-based).
	failCreate func(n int, rec T) error
}

func newMockRepo[T any, P domain.Record[T]]() *mockRepo[T, P] {
	return &mockRepo[T, P]{records: make(map[string]T)}
}

func (m *mockRepo[T, P]) Create(_ context.Context, rec T) error {
	m.creates++
	if m.failCreate != nil {
		if err := m.failCreate(m.creates, rec); err != nil {
			return err
		}
	}
	m.records[P(&rec).Meta().ID] = rec
	return nil
}

func (m *mockRepo[T, P]) GetByID(_ context.Context, id string) (T, error) {
	rec, ok := m.records[id]
	if !ok {
		var zero T
		return zero, &domain.NotFoundError{ID: id}
	}
	return rec, nil
}

func (m *mockRepo[T, P]) List(_ context.Context, _ domain.ListFilter) ([]T, error) {
	out := make([]T, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockRepo[T, P]) Update(_ context.Context, rec T) error {
	m.records[P(&rec).Meta().ID] = rec
	return nil
}

func (m *mockRepo[T, P]) Delete(_ context.Context, id string) error {
	delete(m.records, id)
	return nil
}

type mockIdentifiers struct {
	last map[string]string
	// extra is returned alongside the counter, like a table scan would.
	extra []string
}

func (m *mockIdentifiers) LastIdentifiers(_ context.Context, class domain.Class) ([]string, error) {
	out := slices.Clone(m.extra)
	if v, ok := m.last[class.Name]; ok {
		out = append(out, v)
	}
	return out, nil
}

func (m *mockIdentifiers) SaveLastIdentifier(_ context.Context, id domain.Identifier) error {
	if m.last == nil {
		m.last = make(map[string]string)
	}
	m.last[id.Class.Name] = id.String()
	return nil
}

type mockTx struct{ calls int }

func (m *mockTx) InTx(ctx context.Context, fn func(context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockPublisher struct {
	mu      sync.Mutex
	changes []domain.Change
	err     error
}

func (m *mockPublisher) Publish(_ context.Context, c domain.Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, c)
	return m.err
}

type mocks struct {
	manufacturers *mockRepo[domain.Manufacturer, *domain.Manufacturer]
	ids           *mockIdentifiers
	tx            *mockTx
	pub           *mockPublisher
}

func newMockCatalogue(opts ...app.Option) (*app.Catalogue, *mocks) {
	m := &mocks{
		manufacturers: newMockRepo[domain.Manufacturer](),
		ids:           &mockIdentifiers{},
		tx:            &mockTx{},
		pub:           &mockPublisher{},
	}
	repos := app.Repositories{
		Nouns:           newMockRepo[domain.Noun](),
		Modifiers:       newMockRepo[domain.Modifier](),
		NounModifiers:   newMockRepo[domain.NounModifier](),
		Attributes:      newMockRepo[domain.Attribute](),
		AttributeValues: newMockRepo[domain.AttributeValue](),
		Manufacturers:   m.manufacturers,
	}
	return app.NewCatalogue(repos, m.ids, m.tx, m.pub, fsm.New(), opts...), m
}

// newStoreCatalogue wires the service to a SQLite database at path.
func newStoreCatalogue(t *testing.T, path string) (*app.Catalogue, *mockPublisher) {
	t.Helper()
	store, err := sqlite.New(path)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	pub := &mockPublisher{}
	repos := app.Repositories{
		Nouns:           store.Nouns(),
		Modifiers:       store.Modifiers(),
		NounModifiers:   store.NounModifiers(),
		Attributes:      store.Attributes(),
		AttributeValues: store.AttributeValues(),
		Manufacturers:   store.Manufacturers(),
	}
	return app.NewCatalogue(repos, store, store, pub, fsm.New()), pub
}

// --- Tests ---

func TestCreate_ManufacturerSequence(t *testing.T) {
	svc, pub := newStoreCatalogue(t, ":memory:")
	ctx := context.Background()

	first, err := svc.Manufacturers.Create(ctx, domain.NewManufacturer("", "SKF", "", ""))
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := svc.Manufacturers.Create(ctx, domain.NewManufacturer("", "NSK", "", ""))
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if first.ID != "MFR_0001" {
		t.Errorf("first ID = %q, want %q", first.ID, "MFR_0001")
	}
	if second.ID != "MFR_0002" {
		t.Errorf("second ID = %q, want %q", second.ID, "MFR_0002")
	}

	stored, err := svc.Manufacturers.GetByID(ctx, "MFR_0002")
	if err != nil {
		t.Fatalf("manufacturer not found in store: %v", err)
	}
	if stored.Name != "NSK" {
		t.Errorf("stored Name = %q, want %q", stored.Name, "NSK")
	}

	if len(pub.changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(pub.changes))
	}
	if pub.changes[0].Kind != domain.ChangeCreated || pub.changes[0].RecordID != "MFR_0001" {
		t.Errorf("change = %+v, want created MFR_0001", pub.changes[0])
	}
}

func TestCreate_SeedPerClass(t *testing.T) {
	svc, _ := newStoreCatalogue(t, ":memory:")
	ctx := context.Background()

	noun, err := svc.Nouns.Create(ctx, domain.NewNoun("BEARING", "BRG", ""))
	if err != nil {
		t.Fatalf("noun: %v", err)
	}
	modifier, err := svc.Modifiers.Create(ctx, domain.NewModifier("BALL", "BL", ""))
	if err != nil {
		t.Fatalf("modifier: %v", err)
	}
	pair, err := svc.NounModifiers.Create(ctx, domain.NewNounModifier(noun.ID, modifier.ID, "BRG-BL", ""))
	if err != nil {
		t.Fatalf("noun-modifier: %v", err)
	}
	attr, err := svc.Attributes.Create(ctx, domain.NewAttribute(pair.ID, "BORE DIAMETER", "BD", ""))
	if err != nil {
		t.Fatalf("attribute: %v", err)
	}
	value, err := svc.AttributeValues.Create(ctx, domain.NewAttributeValue(pair.ID, "10 MM", "10", "", ""))
	if err != nil {
		t.Fatalf("attribute value: %v", err)
	}
	mfr, err := svc.Manufacturers.Create(ctx, domain.NewManufacturer(pair.ID, "SKF", "", ""))
	if err != nil {
		t.Fatalf("manufacturer: %v", err)
	}

	got := []string{noun.ID, modifier.ID, pair.ID, attr.ID, value.ID, mfr.ID}
	want := []string{"N_1", "M_0001", "NM_0001", "ATR_0001", "ATRV_0001", "MFR_0001"}
	if !slices.Equal(got, want) {
		t.Errorf("identifiers = %v, want %v", got, want)
	}
	if pair.Name != "BEARING, BALL" {
		t.Errorf("pair Name = %q, want %q", pair.Name, "BEARING, BALL")
	}
}

func TestCreate_UnpaddedNounCrossesDigits(t *testing.T) {
	svc, _ := newStoreCatalogue(t, ":memory:")
	ctx := context.Background()

	var last domain.Noun
	for i := range 10 {
		var err error
		last, err = svc.Nouns.Create(ctx, domain.NewNoun(fmt.Sprintf("NOUN %d", i), fmt.Sprintf("N%d", i), ""))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}
	if last.ID != "N_10" {
		t.Errorf("tenth noun ID = %q, want %q", last.ID, "N_10")
	}
}

func TestCreate_NotReclaimedAfterDelete(t *testing.T) {
	svc, _ := newStoreCatalogue(t, ":memory:")
	ctx := context.Background()

	mfr, err := svc.Manufacturers.Create(ctx, domain.NewManufacturer("", "SKF", "", ""))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := svc.Manufacturers.Delete(ctx, mfr.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	next, err := svc.Manufacturers.Create(ctx, domain.NewManufacturer("", "NSK", "", ""))
	if err != nil {
		t.Fatalf("create after delete failed: %v", err)
	}
	if next.ID != "MFR_0002" {
		t.Errorf("ID = %q, want %q", next.ID, "MFR_0002")
	}
}

func TestCreate_ConcurrentCreatesAreContiguous(t *testing.T) {
	svc, _ := newStoreCatalogue(t, filepath.Join(t.TempDir(), "catalogue.db"))
	const n = 20

	var (
		mu  sync.Mutex
		ids []string
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := range n {
		g.Go(func() error {
			mfr, err := svc.Manufacturers.Create(ctx, domain.NewManufacturer("", fmt.Sprintf("MAKER %02d", i), "", ""))
			if err != nil {
				return err
			}
			mu.Lock()
			ids = append(ids, mfr.ID)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent create failed: %v", err)
	}

	slices.Sort(ids)
	for i, id := range ids {
		want := domain.Identifier{Class: domain.ClassManufacturer, Seq: uint64(i + 1)}.String()
		if id != want {
			t.Errorf("ids[%d] = %q, want %q", i, id, want)
		}
	}
}

// Two stores on one file stand in for two service instances: each has its
// own connection, so only the database lock orders their creates.
func TestCreate_ConcurrentCreatesAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalogue.db")
	instances := []*app.Catalogue{}
	for range 2 {
		svc, _ := newStoreCatalogue(t, path)
		instances = append(instances, svc)
	}
	const n = 40

	var (
		mu  sync.Mutex
		ids []string
	)
	g, ctx := errgroup.WithContext(context.Background())
	for i := range n {
		svc := instances[i%len(instances)]
		g.Go(func() error {
			mfr, err := svc.Manufacturers.Create(ctx, domain.NewManufacturer("", fmt.Sprintf("MAKER %02d", i), "", ""))
			if err != nil {
				return err
			}
			mu.Lock()
			ids = append(ids, mfr.ID)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent create failed: %v", err)
	}

	slices.Sort(ids)
	for i, id := range ids {
		want := domain.Identifier{Class: domain.ClassManufacturer, Seq: uint64(i + 1)}.String()
		if id != want {
			t.Errorf("ids[%d] = %q, want %q", i, id, want)
		}
	}
}

func TestCreate_RetriesDuplicateIdentifier(t *testing.T) {
	svc, m := newMockCatalogue()
	m.manufacturers.failCreate = func(n int, rec domain.Manufacturer) error {
		if n == 1 {
			return &domain.DuplicateIdentifierError{Class: domain.ClassManufacturer, ID: rec.ID}
		}
		return nil
	}

	mfr, err := svc.Manufacturers.Create(context.Background(), domain.NewManufacturer("", "SKF", "", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The mock transaction does not roll back, so the retry sees the first mint.
	if mfr.ID != "MFR_0002" {
		t.Errorf("ID = %q, want %q", mfr.ID, "MFR_0002")
	}
	if m.manufacturers.creates != 2 {
		t.Errorf("inserts = %d, want 2", m.manufacturers.creates)
	}
	if m.tx.calls != 2 {
		t.Errorf("transactions = %d, want 2", m.tx.calls)
	}
}

func TestCreate_GivesUpAfterMintAttempts(t *testing.T) {
	svc, m := newMockCatalogue(app.WithMintAttempts(3))
	m.manufacturers.failCreate = func(_ int, rec domain.Manufacturer) error {
		return &domain.DuplicateIdentifierError{Class: domain.ClassManufacturer, ID: rec.ID}
	}

	_, err := svc.Manufacturers.Create(context.Background(), domain.NewManufacturer("", "SKF", "", ""))
	var dup *domain.DuplicateIdentifierError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIdentifierError, got %v", err)
	}
	if m.manufacturers.creates != 3 {
		t.Errorf("inserts = %d, want 3", m.manufacturers.creates)
	}
	if len(m.pub.changes) != 0 {
		t.Errorf("expected no changes, got %d", len(m.pub.changes))
	}
}

func TestCreate_CorruptIdentifiersAreNotRetried(t *testing.T) {
	tests := []struct {
		name   string
		stored string
		check  func(error) bool
	}{
		{"malformed", "MFR-0007", func(err error) bool {
			var e *domain.MalformedIdentifierError
			return errors.As(err, &e)
		}},
		{"prefix mismatch", "OTHER_0007", func(err error) bool {
			var e *domain.PrefixMismatchError
			return errors.As(err, &e)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newMockCatalogue()
			m.ids.extra = []string{tt.stored}

			_, err := svc.Manufacturers.Create(context.Background(), domain.NewManufacturer("", "SKF", "", ""))
			if !tt.check(err) {
				t.Fatalf("unexpected error: %v", err)
			}
			if m.manufacturers.creates != 0 {
				t.Errorf("inserts = %d, want 0", m.manufacturers.creates)
			}
			if m.tx.calls != 1 {
				t.Errorf("transactions = %d, want 1", m.tx.calls)
			}
		})
	}
}

func TestCreate_BlankName(t *testing.T) {
	svc, m := newMockCatalogue()

	_, err := svc.Manufacturers.Create(context.Background(), domain.NewManufacturer("", "   ", "", ""))
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "name" {
		t.Errorf("field = %q, want %q", vErr.Field, "name")
	}
	if len(m.ids.last) != 0 {
		t.Errorf("expected nothing minted, got %v", m.ids.last)
	}
}

func TestCreate_TrimsInput(t *testing.T) {
	svc, _ := newMockCatalogue()

	noun, err := svc.Nouns.Create(context.Background(), domain.NewNoun("  BEARING ", " BRG", " rolling "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if noun.Name != "BEARING" || noun.Abbreviation != "BRG" || noun.Description != "rolling" {
		t.Errorf("noun = %+v, want trimmed fields", noun)
	}
}

func TestCreate_MissingReference(t *testing.T) {
	svc, _ := newStoreCatalogue(t, ":memory:")
	ctx := context.Background()

	noun, err := svc.Nouns.Create(ctx, domain.NewNoun("BEARING", "BRG", ""))
	if err != nil {
		t.Fatalf("noun: %v", err)
	}

	_, err = svc.NounModifiers.Create(ctx, domain.NewNounModifier(noun.ID, "M_0042", "", ""))
	var ref *domain.ReferenceError
	if !errors.As(err, &ref) {
		t.Fatalf("expected ReferenceError, got %v", err)
	}
	if ref.Class != domain.ClassModifier || ref.ID != "M_0042" {
		t.Errorf("ReferenceError = %+v", ref)
	}

	next, err := svc.Identifiers.NextIdentifier(ctx, domain.ClassNounModifier)
	if err != nil {
		t.Fatalf("NextIdentifier: %v", err)
	}
	if next.String() != "NM_0001" {
		t.Errorf("next = %q, want %q", next, "NM_0001")
	}
}

func TestNextIdentifier_Idempotent(t *testing.T) {
	svc, _ := newStoreCatalogue(t, ":memory:")
	ctx := context.Background()

	if _, err := svc.Modifiers.Create(ctx, domain.NewModifier("BALL", "BL", "")); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := svc.Identifiers.NextIdentifier(ctx, domain.ClassModifier)
	if err != nil {
		t.Fatalf("first NextIdentifier: %v", err)
	}
	second, err := svc.Identifiers.NextIdentifier(ctx, domain.ClassModifier)
	if err != nil {
		t.Fatalf("second NextIdentifier: %v", err)
	}
	if first != second {
		t.Errorf("NextIdentifier changed without an insert: %q then %q", first, second)
	}
	if first.String() != "M_0002" {
		t.Errorf("next = %q, want %q", first, "M_0002")
	}
}

func TestUpdate_KeepsIdentity(t *testing.T) {
	svc, pub := newStoreCatalogue(t, ":memory:")
	ctx := context.Background()

	pairID := seedPair(t, svc)
	attr, err := svc.Attributes.Create(ctx, domain.NewAttribute(pairID, "BORE", "B", ""))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Attributes.Update(ctx, attr.ID, func(a *domain.Attribute) error {
		a.ID = "ATR_9999"
		a.Status = domain.StatusInactive
		a.Description = " bore diameter "
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.ID != attr.ID {
		t.Errorf("ID = %q, want %q", updated.ID, attr.ID)
	}
	if updated.Status != domain.StatusActive {
		t.Errorf("Status = %q, want %q", updated.Status, domain.StatusActive)
	}
	if updated.Description != "bore diameter" {
		t.Errorf("Description = %q, want %q", updated.Description, "bore diameter")
	}
	if last := pub.changes[len(pub.changes)-1]; last.Kind != domain.ChangeUpdated {
		t.Errorf("last change = %q, want %q", last.Kind, domain.ChangeUpdated)
	}
}

func TestUpdate_RederivesPairName(t *testing.T) {
	svc, _ := newStoreCatalogue(t, ":memory:")
	ctx := context.Background()

	pairID := seedPair(t, svc)
	roller, err := svc.Modifiers.Create(ctx, domain.NewModifier("ROLLER", "RL", ""))
	if err != nil {
		t.Fatalf("modifier: %v", err)
	}

	pair, err := svc.NounModifiers.Update(ctx, pairID, func(nm *domain.NounModifier) error {
		nm.ModifierID = roller.ID
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if pair.Name != "BEARING, ROLLER" {
		t.Errorf("Name = %q, want %q", pair.Name, "BEARING, ROLLER")
	}
}

func TestTransition_HappyPath(t *testing.T) {
	svc, pub := newStoreCatalogue(t, ":memory:")
	ctx := context.Background()

	noun, _ := svc.Nouns.Create(ctx, domain.NewNoun("BEARING", "BRG", ""))

	noun, err := svc.Nouns.Transition(ctx, noun.ID, domain.EventDeactivate)
	if err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}
	if noun.Status != domain.StatusInactive {
		t.Errorf("Status = %q, want %q", noun.Status, domain.StatusInactive)
	}

	noun, err = svc.Nouns.Transition(ctx, noun.ID, domain.EventActivate)
	if err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if noun.Status != domain.StatusActive {
		t.Errorf("Status = %q, want %q", noun.Status, domain.StatusActive)
	}

	last := pub.changes[len(pub.changes)-1]
	if last.Kind != domain.ChangeTransitioned || last.Event != domain.EventActivate {
		t.Errorf("last change = %+v", last)
	}
}

func TestTransition_InvalidEvent(t *testing.T) {
	svc, _ := newStoreCatalogue(t, ":memory:")
	ctx := context.Background()

	noun, _ := svc.Nouns.Create(ctx, domain.NewNoun("BEARING", "BRG", ""))

	_, err := svc.Nouns.Transition(ctx, noun.ID, domain.EventActivate)
	var trErr *domain.TransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if trErr.Current != domain.StatusActive {
		t.Errorf("current = %q, want %q", trErr.Current, domain.StatusActive)
	}
}

func TestTransition_NotFound(t *testing.T) {
	svc, _ := newStoreCatalogue(t, ":memory:")

	_, err := svc.Nouns.Transition(context.Background(), "N_404", domain.EventDeactivate)
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestDelete_Referenced(t *testing.T) {
	svc, _ := newStoreCatalogue(t, ":memory:")

	seedPair(t, svc)

	err := svc.Nouns.Delete(context.Background(), "N_1")
	var inUse *domain.InUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("expected InUseError, got %v", err)
	}
}

func TestPublishFailureKeepsWrite(t *testing.T) {
	svc, m := newMockCatalogue()
	m.pub.err = errors.New("queue down")

	mfr, err := svc.Manufacturers.Create(context.Background(), domain.NewManufacturer("", "SKF", "", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.manufacturers.records[mfr.ID]; !ok {
		t.Errorf("manufacturer %q was not stored", mfr.ID)
	}
}

// seedPair creates BEARING, BALL and returns the pair's identifier.
func seedPair(t *testing.T, svc *app.Catalogue) string {
	t.Helper()
	ctx := context.Background()

	noun, err := svc.Nouns.Create(ctx, domain.NewNoun("BEARING", "BRG", ""))
	if err != nil {
		t.Fatalf("noun: %v", err)
	}
	modifier, err := svc.Modifiers.Create(ctx, domain.NewModifier("BALL", "BL", ""))
	if err != nil {
		t.Fatalf("modifier: %v", err)
	}
	pair, err := svc.NounModifiers.Create(ctx, domain.NewNounModifier(noun.ID, modifier.ID, "", ""))
	if err != nil {
		t.Fatalf("noun-modifier: %v", err)
	}
	return pair.ID
}
