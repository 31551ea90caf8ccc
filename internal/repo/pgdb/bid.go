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
	"github.com/google/uuid"
)

var bidColumns = []string{"id", "startup_id", "investor_id", "amount_cents", "equity", "royalty", "status", "created_at", "updated_at"}

type BidRepo struct {
	*database.Store
	clock    clock.Clock
	validate *validation.Validator
}

func NewBidRepo(store *database.Store, clk clock.Clock, v *validation.Validator) *BidRepo {
	return &BidRepo{Store: store, clock: clk, validate: v}
}

func (r *BidRepo) now() time.Time {
	return r.clock.Now().UTC()
}

func (r *BidRepo) CreateBid(ctx context.Context, input *entity.NewBidInput) (*entity.Bid, error) {
	if err := r.validate.Struct(input); err != nil {
		return nil, err
	}

	now := r.now()
	bid := &entity.Bid{
		Id:           newId(),
		StartupId:    input.StartupId,
		InvestorId:   input.InvestorId,
		Amount:       input.Amount,
		Equity:       input.Equity,
		Royalty:      input.Royalty,
		Conditions:   append([]string{}, input.Conditions...),
		Status:       entity.BidPending,
		Negotiations: []entity.Negotiation{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := r.WithinTx(ctx, func(ctx context.Context) error {
		q := r.Querier(ctx)

		createBidReq, args, _ := r.SqlBuilder.
			Insert("bid").
			Columns(bidColumns...).
			Values(bid.Id.String(), string(bid.StartupId), string(bid.InvestorId), toCents(bid.Amount),
				bid.Equity, bid.Royalty, string(bid.Status), now, now).
			ToSql()

		if _, err := q.ExecContext(ctx, createBidReq, args...); err != nil {
			return err
		}

		if len(bid.Conditions) == 0 {
			return nil
		}

		insertConditions := r.SqlBuilder.
			Insert("bid_condition").
			Columns("bid_id", "position", "content")
		for i, condition := range bid.Conditions {
			insertConditions = insertConditions.Values(bid.Id.String(), i, condition)
		}

		createConditionsReq, args, _ := insertConditions.ToSql()
		_, err := q.ExecContext(ctx, createConditionsReq, args...)

		return err
	})
	if err != nil {
		return nil, err
	}

	return bid, nil
}

func (r *BidRepo) GetBidById(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	return r.getBid(ctx, id, false)
}

// LockBidById is GetBidById that also holds a row lock on Postgres until the
// surrounding transaction ends. SQLite transactions already hold the write lock.
func (r *BidRepo) LockBidById(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	return r.getBid(ctx, id, r.Dialect == database.Postgres && database.InTx(ctx))
}

func (r *BidRepo) getBid(ctx context.Context, id uuid.UUID, forUpdate bool) (*entity.Bid, error) {
	q := r.Querier(ctx)

	builder := r.SqlBuilder.
		Select(bidColumns...).
		From("bid").
		Where("id = ?", id.String())
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	getBidReq, args, _ := builder.ToSql()

	bid, err := scanBid(q.QueryRowContext(ctx, getBidReq, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	bids := []entity.Bid{bid}
	if err := r.loadDetails(ctx, q, bids); err != nil {
		return nil, err
	}

	return &bids[0], nil
}

func (r *BidRepo) GetStartupBids(ctx context.Context, startupId entity.StartupID, pg *entity.PaginationInput) ([]entity.Bid, error) {
	return r.ListBids(ctx, entity.BidFilter{StartupId: startupId}, pg)
}

func (r *BidRepo) GetInvestorBids(ctx context.Context, investorId entity.InvestorID, pg *entity.PaginationInput) ([]entity.Bid, error) {
	getInvestorBidsReq := r.SqlBuilder.
		Select(bidColumns...).
		From("bid").
		Where("investor_id = ?", string(investorId)).
		OrderBy("updated_at DESC", "id DESC")

	return r.selectBids(ctx, paginate(getInvestorBidsReq, pg))
}

func (r *BidRepo) GetInvestorBidsByStatus(ctx context.Context, investorId entity.InvestorID, status entity.BidStatus, pg *entity.PaginationInput) ([]entity.Bid, error) {
	getInvestorBidsReq := r.SqlBuilder.
		Select(bidColumns...).
		From("bid").
		Where("investor_id = ?", string(investorId)).
		Where("status = ?", string(status)).
		OrderBy("updated_at DESC", "id DESC")

	return r.selectBids(ctx, paginate(getInvestorBidsReq, pg))
}

func (r *BidRepo) ListBids(ctx context.Context, filter entity.BidFilter, pg *entity.PaginationInput) ([]entity.Bid, error) {
	listBidsReq := r.SqlBuilder.
		Select(bidColumns...).
		From("bid").
		OrderBy("created_at DESC", "id DESC")

	if filter.StartupId != "" {
		listBidsReq = listBidsReq.Where("startup_id = ?", string(filter.StartupId))
	}
	if filter.InvestorId != "" {
		listBidsReq = listBidsReq.Where("investor_id = ?", string(filter.InvestorId))
	}

	return r.selectBids(ctx, paginate(listBidsReq, pg))
}

// UpdateBidStatusById moves the bid from one status to another and reports
// whether the row was in the expected status.
func (r *BidRepo) UpdateBidStatusById(ctx context.Context, id uuid.UUID, from entity.BidStatus, to entity.BidStatus) (bool, error) {
	updateStatusReq, args, _ := r.SqlBuilder.
		Update("bid").
		Set("status", string(to)).
		Set("updated_at", r.now()).
		Where("id = ?", id.String()).
		Where("status = ?", string(from)).
		ToSql()

	res, err := r.Querier(ctx).ExecContext(ctx, updateStatusReq, args...)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

// RejectPendingStartupBids rejects every pending bid of the startup except
// exceptId and returns how many rows changed.
func (r *BidRepo) RejectPendingStartupBids(ctx context.Context, startupId entity.StartupID, exceptId uuid.UUID) (int64, error) {
	rejectReq, args, _ := r.SqlBuilder.
		Update("bid").
		Set("status", string(entity.BidRejected)).
		Set("updated_at", r.now()).
		Where("startup_id = ?", string(startupId)).
		Where("status = ?", string(entity.BidPending)).
		Where("id <> ?", exceptId.String()).
		ToSql()

	res, err := r.Querier(ctx).ExecContext(ctx, rejectReq, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// AppendNegotiation adds entry to the end of the bid's negotiation log and
// returns the bid as stored afterwards.
func (r *BidRepo) AppendNegotiation(ctx context.Context, id uuid.UUID, entry *entity.Negotiation) (*entity.Bid, error) {
	var bid *entity.Bid

	err := r.WithinTx(ctx, func(ctx context.Context) error {
		q := r.Querier(ctx)
		now := r.now()

		touchReq, args, _ := r.SqlBuilder.
			Update("bid").
			Set("updated_at", now).
			Where("id = ?", id.String()).
			ToSql()

		res, err := q.ExecContext(ctx, touchReq, args...)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err != nil {
			return err
		} else if affected == 0 {
			return repo_errors.ErrNotFound
		}

		// the row touched above stays locked until commit, so positions of one
		// bid are handed out one at a time
		positionReq, args, _ := r.SqlBuilder.
			Select("COALESCE(MAX(position), -1) + 1").
			From("bid_negotiation").
			Where("bid_id = ?", id.String()).
			ToSql()

		var position int
		if err := q.QueryRowContext(ctx, positionReq, args...).Scan(&position); err != nil {
			return err
		}

		entry.Id = newId()
		entry.CreatedAt = now

		appendReq, args, _ := r.SqlBuilder.
			Insert("bid_negotiation").
			Columns("id", "bid_id", "position", "message", "sent_by", "created_at").
			Values(entry.Id.String(), id.String(), position, entry.Message, string(entry.SentBy), now).
			ToSql()

		if _, err := q.ExecContext(ctx, appendReq, args...); err != nil {
			return err
		}

		bid, err = r.GetBidById(ctx, id)

		return err
	})
	if err != nil {
		return nil, err
	}

	return bid, nil
}

func (r *BidRepo) DeleteBidById(ctx context.Context, id uuid.UUID) error {
	return r.WithinTx(ctx, func(ctx context.Context) error {
		q := r.Querier(ctx)

		for _, child := range []string{"bid_negotiation", "bid_condition"} {
			deleteChildReq, args, _ := r.SqlBuilder.
				Delete(child).
				Where("bid_id = ?", id.String()).
				ToSql()

			if _, err := q.ExecContext(ctx, deleteChildReq, args...); err != nil {
				return err
			}
		}

		deleteBidReq, args, _ := r.SqlBuilder.
			Delete("bid").
			Where("id = ?", id.String()).
			ToSql()

		res, err := q.ExecContext(ctx, deleteBidReq, args...)
		if err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return repo_errors.ErrNotFound
		}

		return nil
	})
}

func (r *BidRepo) selectBids(ctx context.Context, builder squirrel.SelectBuilder) ([]entity.Bid, error) {
	q := r.Querier(ctx)

	sqlReq, args, _ := builder.ToSql()
	bids, err := queryBids(ctx, q, sqlReq, args)
	if err != nil {
		return nil, err
	}

	if err := r.loadDetails(ctx, q, bids); err != nil {
		return nil, err
	}

	return bids, nil
}

// queryBids reads the bid rows and closes the cursor before any follow-up
// query runs on the same connection.
func queryBids(ctx context.Context, q database.Querier, sqlReq string, args []any) ([]entity.Bid, error) {
	rows, err := q.QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bids := make([]entity.Bid, 0)
	for rows.Next() {
		bid, err := scanBid(rows)
		if err != nil {
			return bids, err
		}
		bids = append(bids, bid)
	}
	if err = rows.Err(); err != nil {
		return bids, err
	}

	return bids, nil
}

// loadDetails fills conditions and negotiations for all bids with one query
// per child table.
func (r *BidRepo) loadDetails(ctx context.Context, q database.Querier, bids []entity.Bid) error {
	if len(bids) == 0 {
		return nil
	}

	ids := make([]string, 0, len(bids))
	byId := make(map[uuid.UUID]*entity.Bid, len(bids))
	for i := range bids {
		bids[i].Conditions = []string{}
		bids[i].Negotiations = []entity.Negotiation{}
		ids = append(ids, bids[i].Id.String())
		byId[bids[i].Id] = &bids[i]
	}

	conditionsReq, args, _ := r.SqlBuilder.
		Select("bid_id", "content").
		From("bid_condition").
		Where(squirrel.Eq{"bid_id": ids}).
		OrderBy("bid_id", "position ASC").
		ToSql()

	if err := eachRow(ctx, q, conditionsReq, args, func(rows *sql.Rows) error {
		var bidId uuid.UUID
		var content string
		if err := rows.Scan(&bidId, &content); err != nil {
			return err
		}
		if bid, ok := byId[bidId]; ok {
			bid.Conditions = append(bid.Conditions, content)
		}

		return nil
	}); err != nil {
		return err
	}

	negotiationsReq, args, _ := r.SqlBuilder.
		Select("id", "bid_id", "message", "sent_by", "created_at").
		From("bid_negotiation").
		Where(squirrel.Eq{"bid_id": ids}).
		OrderBy("bid_id", "position ASC").
		ToSql()

	return eachRow(ctx, q, negotiationsReq, args, func(rows *sql.Rows) error {
		var entry entity.Negotiation
		var bidId uuid.UUID
		if err := rows.Scan(&entry.Id, &bidId, &entry.Message, &entry.SentBy, &entry.CreatedAt); err != nil {
			return err
		}
		if bid, ok := byId[bidId]; ok {
			bid.Negotiations = append(bid.Negotiations, entry)
		}

		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBid(row rowScanner) (entity.Bid, error) {
	var bid entity.Bid
	var cents int64
	err := row.Scan(&bid.Id, &bid.StartupId, &bid.InvestorId, &cents,
		&bid.Equity, &bid.Royalty, &bid.Status, &bid.CreatedAt, &bid.UpdatedAt)
	bid.Amount = fromCents(cents)

	return bid, err
}

func eachRow(ctx context.Context, q database.Querier, sqlReq string, args []any, fn func(rows *sql.Rows) error) error {
	rows, err := q.QueryContext(ctx, sqlReq, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}

	return rows.Err()
}

// paginate applies offset and limit unless pg asks for everything.
func paginate(builder squirrel.SelectBuilder, pg *entity.PaginationInput) squirrel.SelectBuilder {
	if pg.Unbounded() {
		return builder
	}

	return builder.
		Offset(uint64(pg.Offset)).
		Limit(uint64(pg.Limit))
}
