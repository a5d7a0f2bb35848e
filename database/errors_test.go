package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/mongo"
)

func TestMapMongoError(t *testing.T) {
	other := errors.New("network down")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no documents", mongo.ErrNoDocuments, ErrNotFound},
		{"duplicate key", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}, ErrDuplicate},
		{"write conflict in write", mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 112}}}, ErrConflict},
		{"write conflict command", mongo.CommandError{Code: 112, Name: "WriteConflict"}, ErrConflict},
		{"wrapped write conflict", fmt.Errorf("update: %w", mongo.CommandError{Code: 112}), ErrConflict},
		{"other command error", mongo.CommandError{Code: 2}, nil},
		{"passthrough", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapMongoError(tt.in)
			if tt.want == nil {
				if tt.in == nil && got != nil {
					t.Fatalf("MapMongoError(nil) = %v", got)
				}
				if errors.Is(got, ErrConflict) || errors.Is(got, ErrNotFound) || errors.Is(got, ErrDuplicate) {
					t.Fatalf("MapMongoError(%v) = %v, want unmapped", tt.in, got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("MapMongoError(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestInTransaction(t *testing.T) {
	ctx := context.Background()
	if InTransaction(ctx) {
		t.Fatal("plain context reported as transactional")
	}
	if !InTransaction(markTransaction(ctx)) {
		t.Fatal("marked context not reported as transactional")
	}

	var seen bool
	err := NoopTransactor{}.WithTransaction(ctx, func(ctx context.Context) error {
		seen = InTransaction(ctx)
		return nil
	})
	if err != nil || seen {
		t.Fatalf("NoopTransactor: err=%v transactional=%v", err, seen)
	}

	seen = false
	err = NewMongoTransactor(nil, true).WithTransaction(ctx, func(ctx context.Context) error {
		seen = InTransaction(ctx)
		return nil
	})
	if err != nil || seen {
		t.Fatalf("MongoTransactor without client: err=%v transactional=%v", err, seen)
	}
}
