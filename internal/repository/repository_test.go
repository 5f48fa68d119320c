package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/travel-booking/internal/model"
)

type recordingQuerier struct {
	query string
	args  []any
}

func (q *recordingQuerier) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	q.query, q.args = query, args
	return nil, nil
}

func (q *recordingQuerier) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, errors.New("not implemented")
}

func (q *recordingQuerier) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func TestPlaceholders(t *testing.T) {
	cases := map[int]string{0: "", 1: "?", 3: "?,?,?"}
	for n, want := range cases {
		if got := placeholders(n); got != want {
			t.Errorf("placeholders(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	joined := joinCSV([]string{" wifi ", "", "pool", "bad,value"})
	if joined != "wifi,pool" {
		t.Fatalf("joinCSV = %q", joined)
	}
	if got := splitCSV(joined); !reflect.DeepEqual(got, []string{"wifi", "pool"}) {
		t.Fatalf("splitCSV = %v", got)
	}
	if got := splitCSV(""); len(got) != 0 || got == nil {
		t.Fatalf("splitCSV(\"\") = %#v, want empty non-nil", got)
	}
}

func TestPageNormalize(t *testing.T) {
	p := Page{}.Normalize()
	if p.Page != 1 || p.PageSize != 20 || p.Offset() != 0 {
		t.Fatalf("defaults = %+v", p)
	}
	p = Page{Page: 3, PageSize: 500}.Normalize()
	if p.PageSize != 100 || p.Offset() != 200 {
		t.Fatalf("clamped = %+v offset %d", p, p.Offset())
	}
}

func TestTranslationUpsertBuildsOneStatement(t *testing.T) {
	q := &recordingQuerier{}
	err := hotelTr.upsert(context.Background(), q, 7, map[string][]string{
		"en": {"Sea View", "Nice", "1 Beach Rd"},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "INSERT INTO hotel_translations (hotel_id, language, name, description, address) VALUES (?,?,?,?,?) " +
		"ON DUPLICATE KEY UPDATE name = VALUES(name), description = VALUES(description), address = VALUES(address)"
	if q.query != want {
		t.Fatalf("query:\n got %s\nwant %s", q.query, want)
	}
	if !reflect.DeepEqual(q.args, []any{uint64(7), "en", "Sea View", "Nice", "1 Beach Rd"}) {
		t.Fatalf("args = %v", q.args)
	}
}

func TestTranslationUpsertRejectsWrongArity(t *testing.T) {
	q := &recordingQuerier{}
	err := roomTr.upsert(context.Background(), q, 1, map[string][]string{"fr": {"only name"}})
	if err == nil {
		t.Fatal("expected arity error")
	}
	if q.query != "" {
		t.Fatal("no statement should run")
	}
}

func TestTranslationUpsertEmptyIsNoop(t *testing.T) {
	q := &recordingQuerier{}
	if err := carTr.upsert(context.Background(), q, 1, nil); err != nil {
		t.Fatal(err)
	}
	if q.query != "" {
		t.Fatalf("unexpected query %q", q.query)
	}
}

func TestPackageTranslationTableName(t *testing.T) {
	tr := packageTr(model.PackageUmrah.Table())
	if tr.name != "umrah_packages_translations" || tr.keyCol != "entity_id" {
		t.Fatalf("got %+v", tr)
	}
}

func TestCatalogFilterWhere(t *testing.T) {
	clause, args := CatalogFilter{OwnerID: 4, ActiveOnly: true}.where("owner_id")
	if clause != " WHERE owner_id = ? AND is_active = 1" || !reflect.DeepEqual(args, []any{uint64(4)}) {
		t.Fatalf("got %q %v", clause, args)
	}
	clause, args = CatalogFilter{OwnerID: 4}.where("")
	if clause != "" || args != nil {
		t.Fatalf("bundles ignore owner: got %q %v", clause, args)
	}
}

func TestBookingFilterWhere(t *testing.T) {
	f := BookingFilter{Status: model.StatusPending, OwnerID: 9, OwnerType: model.ServiceHotel}
	clause, args, err := f.where()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(clause, "status = ?") || !strings.Contains(clause, "SELECT id FROM hotels WHERE owner_id = ?") {
		t.Fatalf("clause = %q", clause)
	}
	if !reflect.DeepEqual(args, []any{model.StatusPending, model.ServiceHotel, uint64(9)}) {
		t.Fatalf("args = %v", args)
	}

	f = BookingFilter{OwnerID: 9, OwnerType: model.ServiceTour}
	clause, _, err = f.where()
	if err != nil || !strings.Contains(clause, "FROM tours WHERE") {
		t.Fatalf("tour owner clause = %q err %v", clause, err)
	}

	_, _, err = BookingFilter{OwnerID: 9, OwnerType: model.ServiceBundle}.where()
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("bundle owner listing err = %v", err)
	}
}

func TestMySQLErrorClassification(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}
	if !isDuplicate(fmt.Errorf("wrap: %w", dup)) {
		t.Error("1062 should be a duplicate")
	}
	fk := &mysql.MySQLError{Number: 1451}
	if !isForeignKeyViolation(fk) || isDuplicate(fk) {
		t.Error("1451 should be a foreign key violation only")
	}
	if isDuplicate(nil) {
		t.Error("nil is not a duplicate")
	}
}

func TestNullHelpers(t *testing.T) {
	if nullID(sql.NullInt64{}) != nil {
		t.Fatal("invalid NullInt64 should map to nil")
	}
	id := nullID(sql.NullInt64{Int64: 5, Valid: true})
	if id == nil || *id != 5 || idArg(id) != uint64(5) || idArg(nil) != nil {
		t.Fatal("id helpers mismatch")
	}
	if nullDate(nil) != nil {
		t.Fatal("nil date should stay NULL")
	}
}
