package relation

import (
	"sort"

	"github.com/wbrown/relcore/value"
)

// fakeTx and fakeTempStore are minimal in-memory test doubles for
// SessionTx/TempStore, standing in for storage.BadgerTx in unit tests that
// exercise relation's join dispatch without a real transactional backend.

type fakeTriple struct {
	e value.EntityID
	a value.AttrID
	v value.Value
}

type fakeTx struct {
	triples   []fakeTriple
	attrs     map[value.AttrID]value.Attribute
	stores    []*fakeTempStore
	nextStore int64
}

func newFakeTx() *fakeTx {
	return &fakeTx{attrs: make(map[value.AttrID]value.Attribute)}
}

func (tx *fakeTx) addAttr(a value.Attribute)                   { tx.attrs[a.ID] = a }
func (tx *fakeTx) addTriple(e value.EntityID, a value.AttrID, v value.Value) {
	tx.triples = append(tx.triples, fakeTriple{e: e, a: a, v: v})
}

func (tx *fakeTx) TripleAScan(attr value.AttrID, vld value.Validity) AEVIterator {
	var rows []AEVRow
	for _, t := range tx.triples {
		if t.a == attr {
			rows = append(rows, AEVRow{Attr: attr, E: t.e, V: t.v})
		}
	}
	return &fakeAEVIter{rows: rows, idx: -1}
}

func (tx *fakeTx) TripleEAScan(e value.EntityID, attr value.AttrID, vld value.Validity) EAVIterator {
	var rows []EAVRow
	for _, t := range tx.triples {
		if t.a == attr && t.e == e {
			rows = append(rows, EAVRow{E: e, Attr: attr, V: t.v})
		}
	}
	return &fakeEAVIter{rows: rows, idx: -1}
}

func (tx *fakeTx) TripleAVScan(attr value.AttrID, v value.Value, vld value.Validity) AVEIterator {
	var rows []AVERow
	for _, t := range tx.triples {
		if t.a == attr && value.Equal(t.v, v) {
			rows = append(rows, AVERow{Attr: attr, V: v, E: t.e})
		}
	}
	return &fakeAVEIter{rows: rows, idx: -1}
}

func (tx *fakeTx) TripleVRefAScan(vEid value.EntityID, attr value.AttrID, vld value.Validity) VAEIterator {
	var rows []VAERow
	for _, t := range tx.triples {
		if t.a == attr {
			if eid, ok := t.v.(value.EntityID); ok && eid == vEid {
				rows = append(rows, VAERow{VEid: vEid, Attr: attr, E: t.e})
			}
		}
	}
	return &fakeVAEIter{rows: rows, idx: -1}
}

func (tx *fakeTx) EAVExists(e value.EntityID, attr value.AttrID, v value.Value, vld value.Validity) (bool, error) {
	for _, t := range tx.triples {
		if t.e == e && t.a == attr && value.Equal(t.v, v) {
			return true, nil
		}
	}
	return false, nil
}

func (tx *fakeTx) NewThrowaway() TempStore {
	tx.nextStore++
	s := &fakeTempStore{id: TempStoreID(tx.nextStore)}
	tx.stores = append(tx.stores, s)
	return s
}

type fakeAEVIter struct {
	rows []AEVRow
	idx  int
}

func (f *fakeAEVIter) Next() bool     { f.idx++; return f.idx < len(f.rows) }
func (f *fakeAEVIter) Row() AEVRow    { return f.rows[f.idx] }
func (f *fakeAEVIter) Err() error     { return nil }
func (f *fakeAEVIter) Close() error   { return nil }

type fakeEAVIter struct {
	rows []EAVRow
	idx  int
}

func (f *fakeEAVIter) Next() bool   { f.idx++; return f.idx < len(f.rows) }
func (f *fakeEAVIter) Row() EAVRow  { return f.rows[f.idx] }
func (f *fakeEAVIter) Err() error   { return nil }
func (f *fakeEAVIter) Close() error { return nil }

type fakeAVEIter struct {
	rows []AVERow
	idx  int
}

func (f *fakeAVEIter) Next() bool   { f.idx++; return f.idx < len(f.rows) }
func (f *fakeAVEIter) Row() AVERow  { return f.rows[f.idx] }
func (f *fakeAVEIter) Err() error   { return nil }
func (f *fakeAVEIter) Close() error { return nil }

type fakeVAEIter struct {
	rows []VAERow
	idx  int
}

func (f *fakeVAEIter) Next() bool   { f.idx++; return f.idx < len(f.rows) }
func (f *fakeVAEIter) Row() VAERow  { return f.rows[f.idx] }
func (f *fakeVAEIter) Err() error   { return nil }
func (f *fakeVAEIter) Close() error { return nil }

// fakeTempStore keeps (tuple, epoch) rows in a slice; prefix matching
// compares column-by-column with value.Equal, same semantics as the real
// badger-backed store's byte-prefix matching.
type fakeTempStore struct {
	id   TempStoreID
	rows []fakeTempRow
}

type fakeTempRow struct {
	t     value.Tuple
	epoch uint32
}

func (s *fakeTempStore) ID() TempStoreID { return s.id }

func (s *fakeTempStore) Put(t value.Tuple, epoch uint32) error {
	s.rows = append(s.rows, fakeTempRow{t: t.Clone(), epoch: epoch})
	return nil
}

func (s *fakeTempStore) ScanPrefix(prefix value.Tuple) TupleIterator {
	return s.scan(prefix, nil)
}

func (s *fakeTempStore) ScanPrefixForEpoch(prefix value.Tuple, epoch uint32) TupleIterator {
	return s.scan(prefix, &epoch)
}

func (s *fakeTempStore) ScanAllForEpoch(epoch uint32) TupleIterator {
	return s.scan(nil, &epoch)
}

func (s *fakeTempStore) scan(prefix value.Tuple, epoch *uint32) TupleIterator {
	var out []value.Tuple
	for _, r := range s.rows {
		if epoch != nil && r.epoch != *epoch {
			continue
		}
		if len(prefix) > len(r.t) {
			continue
		}
		match := true
		for i, p := range prefix {
			if !value.Equal(p, r.t[i]) {
				match = false
				break
			}
		}
		if match {
			out = append(out, r.t)
		}
	}
	return newSliceIterator(out)
}

func collect(t TupleIterator) ([]value.Tuple, error) {
	var out []value.Tuple
	for t.Next() {
		out = append(out, t.Tuple())
	}
	err := t.Err()
	_ = t.Close()
	return out, err
}

func sortTuples(ts []value.Tuple) {
	sort.Slice(ts, func(i, j int) bool {
		for k := 0; k < len(ts[i]) && k < len(ts[j]); k++ {
			c := value.Compare(ts[i][k], ts[j][k])
			if c != 0 {
				return c < 0
			}
		}
		return len(ts[i]) < len(ts[j])
	})
}
