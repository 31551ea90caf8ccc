package pgdb

import (
	"context"

	"startup-funding-api/pkg/database"
)

type DiagnosticsRepo struct {
	*database.Store
}

func NewDiagnosticsRepo(store *database.Store) *DiagnosticsRepo {
	return &DiagnosticsRepo{store}
}

func (tr *DiagnosticsRepo) Ping(ctx context.Context) error {
	if err := tr.Store.Ping(ctx); err != nil {
		return err
	}

	return nil
}
