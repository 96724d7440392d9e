package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestListHistory(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT id FROM statement_analyses").
		WithArgs("テスト商事株式会社").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("fy2023").AddRow("fy2022"))
	mock.ExpectQuery("SELECT id FROM statement_analyses").
		WithArgs("未登録株式会社").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	var out bytes.Buffer
	if err := listHistory(context.Background(), db, "テスト商事株式会社", &out); err != nil {
		t.Fatalf("listHistory: %v", err)
	}
	if got, want := out.String(), "fy2023\nfy2022\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	if err := listHistory(context.Background(), db, "未登録株式会社", &out); err == nil {
		t.Error("a company without analyses should be an error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}

	if err := listHistory(context.Background(), nil, "x", &out); err == nil {
		t.Error("a missing database should be an error")
	}
}
