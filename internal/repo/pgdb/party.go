package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"startup-funding-api/internal/clock"
	"startup-funding-api/internal/entity"
	"startup-funding-api/internal/repo/repo_errors"
	"startup-funding-api/internal/validation"
	"startup-funding-api/pkg/database"

	"github.com/Masterminds/squirrel"
)

type PartyRepo struct {
	*database.Store
	clock    clock.Clock
	validate *validation.Validator
}

func NewPartyRepo(store *database.Store, clk clock.Clock, v *validation.Validator) *PartyRepo {
	return &PartyRepo{Store: store, clock: clk, validate: v}
}

func (r *PartyRepo) now() time.Time {
	return r.clock.Now().UTC()
}

func (r *PartyRepo) CreateStartup(ctx context.Context, input *entity.CreateStartupInput) (*entity.Startup, error) {
	if err := r.validate.Struct(input); err != nil {
		return nil, err
	}

	startup := &entity.Startup{
		Id:        newId(),
		StartupId: input.StartupId,
		Name:      input.Name,
		CreatedAt: r.now(),
	}

	sqlReq, args, _ := r.SqlBuilder.
		Insert("startup").
		Columns("id", "startup_id", "name", "created_at").
		Values(startup.Id.String(), string(startup.StartupId), startup.Name, startup.CreatedAt).
		ToSql()

	if _, err := r.Querier(ctx).ExecContext(ctx, sqlReq, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, repo_errors.ErrAlreadyExists
		}

		return nil, err
	}

	return startup, nil
}

func (r *PartyRepo) CreateInvestor(ctx context.Context, input *entity.CreateInvestorInput) (*entity.Investor, error) {
	if err := r.validate.Struct(input); err != nil {
		return nil, err
	}

	investor := &entity.Investor{
		Id:         newId(),
		InvestorId: input.InvestorId,
		Name:       input.Name,
		CreatedAt:  r.now(),
	}

	sqlReq, args, _ := r.SqlBuilder.
		Insert("investor").
		Columns("id", "investor_id", "name", "created_at").
		Values(investor.Id.String(), string(investor.InvestorId), investor.Name, investor.CreatedAt).
		ToSql()

	if _, err := r.Querier(ctx).ExecContext(ctx, sqlReq, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, repo_errors.ErrAlreadyExists
		}

		return nil, err
	}

	return investor, nil
}

func (r *PartyRepo) GetStartupByKey(ctx context.Context, startupId entity.StartupID) (*entity.Startup, error) {
	sqlReq, args, _ := r.SqlBuilder.
		Select("id", "startup_id", "name", "created_at").
		From("startup").
		Where("startup_id = ?", string(startupId)).
		ToSql()

	var startup entity.Startup
	err := r.Querier(ctx).QueryRowContext(ctx, sqlReq, args...).
		Scan(&startup.Id, &startup.StartupId, &startup.Name, &startup.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return &startup, nil
}

func (r *PartyRepo) GetInvestorByKey(ctx context.Context, investorId entity.InvestorID) (*entity.Investor, error) {
	sqlReq, args, _ := r.SqlBuilder.
		Select("id", "investor_id", "name", "created_at").
		From("investor").
		Where("investor_id = ?", string(investorId)).
		ToSql()

	var investor entity.Investor
	err := r.Querier(ctx).QueryRowContext(ctx, sqlReq, args...).
		Scan(&investor.Id, &investor.InvestorId, &investor.Name, &investor.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return &investor, nil
}

// GetStartupNames resolves display names for a set of business keys in one
// query. Keys without a startup are absent from the result.
func (r *PartyRepo) GetStartupNames(ctx context.Context, startupIds []entity.StartupID) (map[entity.StartupID]string, error) {
	names := make(map[entity.StartupID]string, len(startupIds))
	if len(startupIds) == 0 {
		return names, nil
	}

	seen := make(map[entity.StartupID]struct{}, len(startupIds))
	keys := make([]string, 0, len(startupIds))
	for _, id := range startupIds {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		keys = append(keys, string(id))
	}

	sqlReq, args, _ := r.SqlBuilder.
		Select("startup_id", "name").
		From("startup").
		Where(squirrel.Eq{"startup_id": keys}).
		ToSql()

	err := eachRow(ctx, r.Querier(ctx), sqlReq, args, func(rows *sql.Rows) error {
		var id entity.StartupID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return err
		}
		names[id] = name

		return nil
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// AppendFunding adds one entry to the investor's funding history. The history
// is keyed by business key and is written whether or not an investor record
// exists. A second entry for the same bid is refused by the store.
func (r *PartyRepo) AppendFunding(ctx context.Context, record *entity.FundingRecord) error {
	record.Id = newId()
	record.CreatedAt = r.now()

	sqlReq, args, _ := r.SqlBuilder.
		Insert("investor_funding").
		Columns("id", "investor_id", "bid_id", "company_name", "amount_cents", "year", "created_at").
		Values(record.Id.String(), string(record.InvestorId), record.BidId.String(), record.CompanyName,
			toCents(record.Amount), record.Year, record.CreatedAt).
		ToSql()

	_, err := r.Querier(ctx).ExecContext(ctx, sqlReq, args...)

	return err
}

// GetInvestorFunding returns the investor's funding history, oldest first.
func (r *PartyRepo) GetInvestorFunding(ctx context.Context, investorId entity.InvestorID) ([]entity.FundingRecord, error) {
	sqlReq, args, _ := r.SqlBuilder.
		Select("id", "investor_id", "bid_id", "company_name", "amount_cents", "year", "created_at").
		From("investor_funding").
		Where("investor_id = ?", string(investorId)).
		OrderBy("created_at ASC", "id ASC").
		ToSql()

	records := make([]entity.FundingRecord, 0)
	err := eachRow(ctx, r.Querier(ctx), sqlReq, args, func(rows *sql.Rows) error {
		var record entity.FundingRecord
		var cents int64
		if err := rows.Scan(&record.Id, &record.InvestorId, &record.BidId, &record.CompanyName,
			&cents, &record.Year, &record.CreatedAt); err != nil {
			return err
		}
		record.Amount = fromCents(cents)
		records = append(records, record)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return records, nil
}
