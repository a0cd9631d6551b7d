package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/blueprint-estimator/internal/common"
)

// ErrConditionFailed is returned by PutIfAbsent when the key already exists.
var ErrConditionFailed = errors.New("conditional write failed: item exists")

// Item is one document in the keyed store.
type Item struct {
	PK   string
	SK   string
	GSI1 string
	Data []byte
}

// Store is a partition/sort-key document store with one secondary index.
type Store interface {
	Get(ctx context.Context, pk, sk string) (*Item, error)
	GetByIndex(ctx context.Context, gsi1 string) (*Item, error)
	Put(ctx context.Context, item Item) error
	PutIfAbsent(ctx context.Context, item Item) error
	Query(ctx context.Context, pk, skPrefix string) ([]Item, error)
}

type sqlStore struct {
	db  *DB
	log *slog.Logger
	now func() time.Time
}

// NewStore returns a Store backed by the items table.
func NewStore(db *DB, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}
	return &sqlStore{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *sqlStore) Get(ctx context.Context, pk, sk string) (*Item, error) {
	row := s.db.SQL.QueryRowContext(ctx,
		s.db.Rebind(`SELECT pk, sk, gsi1, data FROM items WHERE pk = ? AND sk = ?`), pk, sk)
	return s.scanOne(row, "get item")
}

func (s *sqlStore) GetByIndex(ctx context.Context, gsi1 string) (*Item, error) {
	row := s.db.SQL.QueryRowContext(ctx,
		s.db.Rebind(`SELECT pk, sk, gsi1, data FROM items WHERE gsi1 = ? LIMIT 1`), gsi1)
	return s.scanOne(row, "get item by index")
}

func (s *sqlStore) scanOne(row *sql.Row, op string) (*Item, error) {
	var (
		it   Item
		gsi1 sql.NullString
		data []byte
	)
	if err := row.Scan(&it.PK, &it.SK, &gsi1, &data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		s.log.Error("store read failed", "op", op, "error", err)
		return nil, common.Persistence(op, err)
	}
	it.GSI1 = gsi1.String
	it.Data = data
	return &it, nil
}

func (s *sqlStore) Put(ctx context.Context, item Item) error {
	_, err := s.db.SQL.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO items (pk, sk, gsi1, data, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (pk, sk) DO UPDATE SET gsi1 = excluded.gsi1, data = excluded.data, updated_at = excluded.updated_at`),
		item.PK, item.SK, nullable(item.GSI1), string(item.Data), s.now())
	if err != nil {
		s.log.Error("store put failed", "pk", item.PK, "sk", item.SK, "error", err)
		return common.Persistence("put item", err)
	}
	return nil
}

func (s *sqlStore) PutIfAbsent(ctx context.Context, item Item) error {
	res, err := s.db.SQL.ExecContext(ctx, s.db.Rebind(`
		INSERT INTO items (pk, sk, gsi1, data, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (pk, sk) DO NOTHING`),
		item.PK, item.SK, nullable(item.GSI1), string(item.Data), s.now())
	if err != nil {
		s.log.Error("store conditional put failed", "pk", item.PK, "sk", item.SK, "error", err)
		return common.Persistence("put item if absent", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return common.Persistence("put item if absent", err)
	}
	if n == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (s *sqlStore) Query(ctx context.Context, pk, skPrefix string) ([]Item, error) {
	rows, err := s.db.SQL.QueryContext(ctx, s.db.Rebind(`
		SELECT pk, sk, gsi1, data FROM items
		WHERE pk = ? AND sk LIKE ? ESCAPE '\'
		ORDER BY sk`), pk, escapeLike(skPrefix)+"%")
	if err != nil {
		s.log.Error("store query failed", "pk", pk, "sk_prefix", skPrefix, "error", err)
		return nil, common.Persistence("query items", err)
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var (
			it   Item
			gsi1 sql.NullString
			data []byte
		)
		if err := rows.Scan(&it.PK, &it.SK, &gsi1, &data); err != nil {
			return nil, common.Persistence("scan items", err)
		}
		it.GSI1 = gsi1.String
		it.Data = data
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, common.Persistence("query items", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Key builders for the aggregates kept in the store.
func projectPK(projectID string) string     { return "PROJECT#" + projectID }
func blueprintSK(blueprintID string) string { return "BLUEPRINT#" + blueprintID }
func estimateSK(estimateID string) string   { return "ESTIMATE#" + estimateID }
func companyPK(companyID string) string     { return "COMPANY#" + companyID }
func templatePK(templateID string) string   { return "TEMPLATE#" + templateID }
func historyPK(companyID string) string     { return "HISTORY#" + companyID }

const (
	skMetadata = "METADATA"
	skSettings = "SETTINGS"
)

func marshalItem(pk, sk, gsi1 string, v any) (Item, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Item{}, common.Persistence("encode "+sk, err)
	}
	return Item{PK: pk, SK: sk, GSI1: gsi1, Data: b}, nil
}

func unmarshalItem[T any](it *Item) (*T, error) {
	var v T
	if err := json.Unmarshal(it.Data, &v); err != nil {
		return nil, common.Persistence("decode "+it.SK, err)
	}
	return &v, nil
}

// getDoc loads one document, turning a missing key into a typed NotFound.
func getDoc[T any](ctx context.Context, s Store, pk, sk, entity, id string) (*T, error) {
	it, err := s.Get(ctx, pk, sk)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.NotFound(entity, id)
	}
	if err != nil {
		return nil, err
	}
	return unmarshalItem[T](it)
}

func queryDocs[T any](ctx context.Context, s Store, pk, skPrefix string) ([]T, error) {
	items, err := s.Query(ctx, pk, skPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for i := range items {
		v, err := unmarshalItem[T](&items[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}
