package user

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

var id = int64(25)
var u = &User{ID: id, Username: "vectoreal"}

func TestGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}

	defer db.Close()

	repo := NewUserRepoSQL(db)

	rows := sqlmock.NewRows([]string{"id", "username"}).
		AddRow(id, u.Username)

	mock.
		ExpectQuery("SELECT `id`, `username` FROM users WHERE").
		WithArgs(id).
		WillReturnRows(rows)

	res, err := repo.GetByID(id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}

	if !reflect.DeepEqual(u, res) {
		t.Fatalf("expected %v, but was %v", u, res)
	}

	// error
	mock.
		ExpectQuery("SELECT `id`, `username` FROM users WHERE").
		WithArgs(id).
		WillReturnError(errors.New("db_error"))

	res, err = repo.GetByID(id)

	if res != nil {
		t.Fatalf("unexpected result: %v", res)
	}

	if err == nil {
		t.Fatalf("expected error but was nil")
	}

	// no rows
	mock.
		ExpectQuery("SELECT `id`, `username` FROM users WHERE").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	res, err = repo.GetByID(id)

	if res != nil || err != nil {
		t.Fatalf("wrong result, expected both nil but was %v, %v", res, err)
	}
}
