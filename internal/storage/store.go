package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/evanofslack/domain-sync/internal/domain"
	"github.com/evanofslack/domain-sync/internal/metrics"
)

const (
	domainPrefix       = "domain:"
	notificationPrefix = "notification:"
	pricePrefix        = "price:"

	notificationSeqKey = "seq:notification"
)

type Store interface {
	UpsertDomain(ctx context.Context, rec domain.Record) (domain.Record, error)
	DomainsByProvider(ctx context.Context, provider string) ([]domain.Record, error)
	AllDomains(ctx context.Context) ([]domain.Record, error)
	InsertNotification(ctx context.Context, domainName, event, message string) (domain.Notification, error)
	Notifications(ctx context.Context) ([]domain.Notification, error)
	UpsertTLDPrice(ctx context.Context, price domain.TLDPrice) error
	TLDPrices(ctx context.Context, provider string) ([]domain.TLDPrice, error)
	Close() error
}

type badgerStore struct {
	db      *badger.DB
	seq     *badger.Sequence
	metrics *metrics.Metrics
}

func New(path string, metrics *metrics.Metrics) (Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logger

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	seq, err := db.GetSequence([]byte(notificationSeqKey), 64)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("open notification sequence: %w", err)
	}

	s := &badgerStore{db: db, seq: seq, metrics: metrics}
	return s, nil
}

func domainKey(provider, name string) []byte {
	return []byte(domainPrefix + provider + ":" + name)
}

// UpsertDomain inserts or updates a record keyed on (name, provider),
// last-write-wins. The stored created_at survives updates; updated_at is
// refreshed on every write. Returns the record as stored.
func (s *badgerStore) UpsertDomain(ctx context.Context, rec domain.Record) (domain.Record, error) {
	key := domainKey(rec.Provider, rec.Name)
	now := time.Now().UTC()

	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case err == badger.ErrKeyNotFound:
			rec.CreatedAt = now
		case err != nil:
			return err
		default:
			var existing domain.Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &existing)
			}); err != nil {
				return err
			}
			rec.CreatedAt = existing.CreatedAt
		}
		rec.UpdatedAt = now

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	s.metrics.IncBadgerRequest("update", err == nil)
	if err != nil {
		return domain.Record{}, fmt.Errorf("upsert domain %s/%s: %w", rec.Provider, rec.Name, err)
	}
	return rec, nil
}

func (s *badgerStore) DomainsByProvider(ctx context.Context, provider string) ([]domain.Record, error) {
	return s.scanDomains([]byte(domainPrefix + provider + ":"))
}

func (s *badgerStore) AllDomains(ctx context.Context) ([]domain.Record, error) {
	return s.scanDomains([]byte(domainPrefix))
}

func (s *badgerStore) scanDomains(prefix []byte) ([]domain.Record, error) {
	records := []domain.Record{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var rec domain.Record
				if err := json.Unmarshal(val, &rec); err != nil {
					return err
				}
				records = append(records, rec)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	s.metrics.IncBadgerRequest("read", err == nil)
	if err != nil {
		return nil, fmt.Errorf("scan domains: %w", err)
	}
	return records, nil
}

// InsertNotification persists a new change event row. Rows are never
// mutated after creation.
func (s *badgerStore) InsertNotification(ctx context.Context, domainName, event, message string) (domain.Notification, error) {
	id, err := s.seq.Next()
	if err != nil {
		return domain.Notification{}, fmt.Errorf("next notification id: %w", err)
	}

	notification := domain.Notification{
		ID:        id,
		Domain:    domainName,
		Event:     event,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(notification)
		if err != nil {
			return err
		}
		key := fmt.Sprintf("%s%020d", notificationPrefix, notification.ID)
		return txn.Set([]byte(key), data)
	})
	s.metrics.IncBadgerRequest("create", err == nil)
	if err != nil {
		return domain.Notification{}, fmt.Errorf("insert notification for %s: %w", domainName, err)
	}
	return notification, nil
}

func (s *badgerStore) Notifications(ctx context.Context) ([]domain.Notification, error) {
	notifications := []domain.Notification{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(notificationPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var n domain.Notification
				if err := json.Unmarshal(val, &n); err != nil {
					return err
				}
				notifications = append(notifications, n)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	s.metrics.IncBadgerRequest("read", err == nil)
	if err != nil {
		return nil, fmt.Errorf("scan notifications: %w", err)
	}
	return notifications, nil
}

func (s *badgerStore) UpsertTLDPrice(ctx context.Context, price domain.TLDPrice) error {
	price.UpdatedAt = time.Now().UTC()

	err := s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(price)
		if err != nil {
			return err
		}
		key := pricePrefix + price.Provider + ":" + strings.ToLower(price.TLD)
		return txn.Set([]byte(key), data)
	})
	s.metrics.IncBadgerRequest("update", err == nil)
	if err != nil {
		return fmt.Errorf("upsert tld price %s/%s: %w", price.Provider, price.TLD, err)
	}
	return nil
}

func (s *badgerStore) TLDPrices(ctx context.Context, provider string) ([]domain.TLDPrice, error) {
	prices := []domain.TLDPrice{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(pricePrefix + provider + ":")
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var p domain.TLDPrice
				if err := json.Unmarshal(val, &p); err != nil {
					return err
				}
				prices = append(prices, p)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	s.metrics.IncBadgerRequest("read", err == nil)
	if err != nil {
		return nil, fmt.Errorf("scan tld prices: %w", err)
	}
	return prices, nil
}

func (s *badgerStore) Close() error {
	if err := s.seq.Release(); err != nil {
		return err
	}
	return s.db.Close()
}
