package storage

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/wbrown/relcore/relation"
	"github.com/wbrown/relcore/value"
)

// BadgerTempStore implements relation.TempStore as badger keys prefixed by
// a per-store id, with every tuple column self-delimited and a trailing
// epoch suffix (see key.go). It shares the owning BadgerTx's transaction,
// so throwaway writes are visible only within that transaction and vanish
// if it is discarded rather than committed.
type BadgerTempStore struct {
	txn *badger.Txn
	id  int64
}

var _ relation.TempStore = (*BadgerTempStore)(nil)

func (s *BadgerTempStore) ID() relation.TempStoreID { return relation.TempStoreID(s.id) }

func (s *BadgerTempStore) Put(t value.Tuple, epoch uint32) error {
	if err := s.txn.Set(tempStoreKey(s.id, t, epoch), nil); err != nil {
		return fmt.Errorf("storage: temp store put: %w", err)
	}
	return nil
}

func (s *BadgerTempStore) ScanPrefix(prefix value.Tuple) relation.TupleIterator {
	return s.scan(prefix, nil)
}

func (s *BadgerTempStore) ScanPrefixForEpoch(prefix value.Tuple, epoch uint32) relation.TupleIterator {
	return s.scan(prefix, &epoch)
}

func (s *BadgerTempStore) ScanAllForEpoch(epoch uint32) relation.TupleIterator {
	return s.scan(nil, &epoch)
}

func (s *BadgerTempStore) scan(prefixCols value.Tuple, epoch *uint32) relation.TupleIterator {
	prefix := tempStoreTuplePrefix(s.id, prefixCols)
	it := newKeyIterator(s.txn, prefix)
	return &tempStoreIterator{it: it, storeIDLen: len(tempStorePrefix(s.id)), epoch: epoch}
}

type tempStoreIterator struct {
	it         *keyIterator
	storeIDLen int
	epoch      *uint32
	cur        value.Tuple
	err        error
}

func (t *tempStoreIterator) Next() bool {
	for {
		key, ok := t.it.next()
		if !ok {
			return false
		}
		cols, ep, err := decodeTempStoreKey(key[t.storeIDLen:])
		if err != nil {
			t.err = err
			return false
		}
		if t.epoch != nil && ep != *t.epoch {
			continue
		}
		t.cur = cols
		return true
	}
}

func (t *tempStoreIterator) Tuple() value.Tuple { return t.cur }
func (t *tempStoreIterator) Err() error         { return t.err }
func (t *tempStoreIterator) Close() error       { return t.it.close() }
