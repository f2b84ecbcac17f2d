package relation

import "github.com/wbrown/relcore/value"

// Triple is a scan over (entity, attribute, value) facts, with six join
// physical variants selected by the shape of the build-side join indices.
type Triple struct {
	Attr     value.Attribute
	Vld      value.Validity
	Bindings [2]value.Binding // [e_binding, v_binding]
}

func (*Triple) sealed() {}

func (t *Triple) bindingsBeforeEliminate() []value.Binding { return t.Bindings[:] }
func (t *Triple) BindingsAfterEliminate() []value.Binding  { return t.Bindings[:] }

// Triple carries no elimination set of its own: it is a leaf whose columns
// are already minimal at construction.
func (t *Triple) EliminateTempVars(map[value.Binding]struct{}) error { return nil }
func (t *Triple) fillPredicateBindingIndices()                      {}

func (t *Triple) Iter(tx SessionTx, _ *uint32, _ map[TempStoreID]struct{}) TupleIterator {
	scan := tx.TripleAScan(t.Attr.ID, t.Vld)
	return newScanIterator(scan, func(r AEVRow) value.Tuple {
		return value.Tuple{r.E, r.V}
	})
}

// newScanIterator adapts an AEV storage scan iterator into a TupleIterator
// by applying a per-row projection. The EAV, AVE and VAE scan kinds each
// get their own small non-generic adapter below, matching the teacher's
// non-generic style throughout the codebase.
func newScanIterator(it AEVIterator, proj func(AEVRow) value.Tuple) TupleIterator {
	return &aevAdapter{it: it, proj: proj}
}

type aevAdapter struct {
	it   AEVIterator
	proj func(AEVRow) value.Tuple
	tup  value.Tuple
}

func (a *aevAdapter) Next() bool {
	if !a.it.Next() {
		return false
	}
	a.tup = a.proj(a.it.Row())
	return true
}
func (a *aevAdapter) Tuple() value.Tuple { return a.tup }
func (a *aevAdapter) Err() error         { return wrapStorageErr("triple_a_before_scan", a.it.Err()) }
func (a *aevAdapter) Close() error       { return a.it.Close() }

type eavAdapter struct {
	it   EAVIterator
	proj func(EAVRow) value.Tuple
	tup  value.Tuple
}

func newEAVIterator(it EAVIterator, proj func(EAVRow) value.Tuple) TupleIterator {
	return &eavAdapter{it: it, proj: proj}
}
func (a *eavAdapter) Next() bool {
	if !a.it.Next() {
		return false
	}
	a.tup = a.proj(a.it.Row())
	return true
}
func (a *eavAdapter) Tuple() value.Tuple { return a.tup }
func (a *eavAdapter) Err() error         { return wrapStorageErr("triple_ea_before_scan", a.it.Err()) }
func (a *eavAdapter) Close() error       { return a.it.Close() }

type aveAdapter struct {
	it   AVEIterator
	proj func(AVERow) value.Tuple
	tup  value.Tuple
}

func newAVEIterator(it AVEIterator, proj func(AVERow) value.Tuple) TupleIterator {
	return &aveAdapter{it: it, proj: proj}
}
func (a *aveAdapter) Next() bool {
	if !a.it.Next() {
		return false
	}
	a.tup = a.proj(a.it.Row())
	return true
}
func (a *aveAdapter) Tuple() value.Tuple { return a.tup }
func (a *aveAdapter) Err() error         { return wrapStorageErr("triple_av_before_scan", a.it.Err()) }
func (a *aveAdapter) Close() error       { return a.it.Close() }

type vaeAdapter struct {
	it   VAEIterator
	proj func(VAERow) value.Tuple
	tup  value.Tuple
}

func newVAEIterator(it VAEIterator, proj func(VAERow) value.Tuple) TupleIterator {
	return &vaeAdapter{it: it, proj: proj}
}
func (a *vaeAdapter) Next() bool {
	if !a.it.Next() {
		return false
	}
	a.tup = a.proj(a.it.Row())
	return true
}
func (a *vaeAdapter) Tuple() value.Tuple { return a.tup }
func (a *vaeAdapter) Err() error {
	return wrapStorageErr("triple_vref_a_before_scan", a.it.Err())
}
func (a *vaeAdapter) Close() error { return a.it.Close() }

// join dispatches to one of six physical strategies selected solely by the
// shape of rightIdx, per spec §4.2.
func (t *Triple) join(probe TupleIterator, leftIdx, rightIdx []int, tx SessionTx, elim map[int]struct{}) TupleIterator {
	switch len(rightIdx) {
	case 0:
		return t.cartesianJoin(probe, tx, elim)
	case 2:
		e, v, ok := evOrder(leftIdx, rightIdx)
		if !ok {
			return newErrIterator(newLogicError("impossible triple join shape for %v/%v", leftIdx, rightIdx))
		}
		return t.evJoin(probe, e, v, tx, elim)
	case 1:
		if rightIdx[0] == 0 {
			return t.eJoin(probe, leftIdx[0], tx, elim)
		}
		if t.Attr.IsRefType() {
			return t.vRefJoin(probe, leftIdx[0], tx, elim)
		}
		if t.Attr.ShouldIndex() {
			return t.vIndexJoin(probe, leftIdx[0], tx, elim)
		}
		return t.vNoIndexJoin(probe, leftIdx[0], tx, elim)
	default:
		return newErrIterator(newLogicError("impossible |R|=%d in triple join dispatch", len(rightIdx)))
	}
}

// negJoin mirrors join's dispatch; semantics: keep the probe tuple iff no
// matching triple exists.
func (t *Triple) negJoin(probe TupleIterator, leftIdx, rightIdx []int, tx SessionTx) TupleIterator {
	switch len(rightIdx) {
	case 2:
		e, v, ok := evOrder(leftIdx, rightIdx)
		if !ok {
			return newErrIterator(newLogicError("impossible triple join shape for %v/%v", leftIdx, rightIdx))
		}
		return t.negEVJoin(probe, e, v, tx)
	case 1:
		if rightIdx[0] == 0 {
			return t.negEJoin(probe, leftIdx[0], tx)
		}
		if t.Attr.IsRefType() {
			return t.negVRefJoin(probe, leftIdx[0], tx)
		}
		if t.Attr.ShouldIndex() {
			return t.negVIndexJoin(probe, leftIdx[0], tx)
		}
		return t.negVNoIndexJoin(probe, leftIdx[0], tx)
	default:
		return newErrIterator(newLogicError("impossible |R|=%d in triple neg-join dispatch", len(rightIdx)))
	}
}

// evOrder resolves the {0,1}/{1,0} two-index case to (leftEIdx, leftVIdx).
func evOrder(leftIdx, rightIdx []int) (e, v int, ok bool) {
	switch {
	case rightIdx[0] == 0 && rightIdx[1] == 1:
		return leftIdx[0], leftIdx[1], true
	case rightIdx[0] == 1 && rightIdx[1] == 0:
		return leftIdx[1], leftIdx[0], true
	default:
		return 0, 0, false
	}
}

func appendEV(t value.Tuple, e value.EntityID, v value.Value, elim map[int]struct{}) value.Tuple {
	out := make(value.Tuple, 0, len(t)+2)
	out = append(out, t...)
	out = append(out, e, v)
	return project(out, elim)
}

// cartesianJoin (|R|==0): full attribute scan crossed with every probe tuple.
func (t *Triple) cartesianJoin(probe TupleIterator, tx SessionTx, elim map[int]struct{}) TupleIterator {
	return newFlatMapIterator(probe, func(lt value.Tuple) (TupleIterator, error) {
		scan := tx.TripleAScan(t.Attr.ID, t.Vld)
		return newScanIterator(scan, func(r AEVRow) value.Tuple {
			return appendEV(lt, r.E, r.V, elim)
		}), nil
	})
}

// evJoin (|R|==2, semijoin-shaped filter): existence check.
func (t *Triple) evJoin(probe TupleIterator, eIdx, vIdx int, tx SessionTx, elim map[int]struct{}) TupleIterator {
	return newFilterMapIterator(probe, func(lt value.Tuple) (value.Tuple, bool, error) {
		eid, err := value.AsEntityID(lt[eIdx])
		if err != nil {
			return nil, false, err
		}
		v := lt[vIdx]
		exists, err := tx.EAVExists(eid, t.Attr.ID, v, t.Vld)
		if err != nil {
			return nil, false, wrapStorageErr("eav_exists", err)
		}
		if !exists {
			return nil, false, nil
		}
		return appendEV(lt, eid, v, elim), true, nil
	})
}

func (t *Triple) negEVJoin(probe TupleIterator, eIdx, vIdx int, tx SessionTx) TupleIterator {
	return newFilterMapIterator(probe, func(lt value.Tuple) (value.Tuple, bool, error) {
		eid, err := value.AsEntityID(lt[eIdx])
		if err != nil {
			return nil, false, err
		}
		exists, err := tx.EAVExists(eid, t.Attr.ID, lt[vIdx], t.Vld)
		if err != nil {
			return nil, false, wrapStorageErr("eav_exists", err)
		}
		return lt, !exists, nil
	})
}

// eJoin (|R|=={0}): scan triples by entity.
func (t *Triple) eJoin(probe TupleIterator, eIdx int, tx SessionTx, elim map[int]struct{}) TupleIterator {
	return newFlatMapIterator(probe, func(lt value.Tuple) (TupleIterator, error) {
		eid, err := value.AsEntityID(lt[eIdx])
		if err != nil {
			return nil, err
		}
		scan := tx.TripleEAScan(eid, t.Attr.ID, t.Vld)
		return newEAVIterator(scan, func(r EAVRow) value.Tuple {
			return appendEV(lt, r.E, r.V, elim)
		}), nil
	})
}

func (t *Triple) negEJoin(probe TupleIterator, eIdx int, tx SessionTx) TupleIterator {
	return newFilterMapIterator(probe, func(lt value.Tuple) (value.Tuple, bool, error) {
		eid, err := value.AsEntityID(lt[eIdx])
		if err != nil {
			return nil, false, err
		}
		scan := tx.TripleEAScan(eid, t.Attr.ID, t.Vld)
		has := scan.Next()
		err = scan.Err()
		_ = scan.Close()
		if err != nil {
			return nil, false, wrapStorageErr("triple_ea_before_scan", err)
		}
		return lt, !has, nil
	})
}

// vRefJoin (|R|=={1}, value is a reference): reverse-ref scan.
func (t *Triple) vRefJoin(probe TupleIterator, vIdx int, tx SessionTx, elim map[int]struct{}) TupleIterator {
	return newFlatMapIterator(probe, func(lt value.Tuple) (TupleIterator, error) {
		vEid, err := value.AsEntityID(lt[vIdx])
		if err != nil {
			return nil, err
		}
		scan := tx.TripleVRefAScan(vEid, t.Attr.ID, t.Vld)
		return newVAEIterator(scan, func(r VAERow) value.Tuple {
			return appendEV(lt, r.E, vEid, elim)
		}), nil
	})
}

func (t *Triple) negVRefJoin(probe TupleIterator, vIdx int, tx SessionTx) TupleIterator {
	return newFilterMapIterator(probe, func(lt value.Tuple) (value.Tuple, bool, error) {
		vEid, err := value.AsEntityID(lt[vIdx])
		if err != nil {
			return nil, false, err
		}
		scan := tx.TripleVRefAScan(vEid, t.Attr.ID, t.Vld)
		has := scan.Next()
		err = scan.Err()
		_ = scan.Close()
		if err != nil {
			return nil, false, wrapStorageErr("triple_vref_a_before_scan", err)
		}
		return lt, !has, nil
	})
}

// vIndexJoin (|R|=={1}, value indexed): scan by value.
func (t *Triple) vIndexJoin(probe TupleIterator, vIdx int, tx SessionTx, elim map[int]struct{}) TupleIterator {
	return newFlatMapIterator(probe, func(lt value.Tuple) (TupleIterator, error) {
		scan := tx.TripleAVScan(t.Attr.ID, lt[vIdx], t.Vld)
		return newAVEIterator(scan, func(r AVERow) value.Tuple {
			return appendEV(lt, r.E, r.V, elim)
		}), nil
	})
}

func (t *Triple) negVIndexJoin(probe TupleIterator, vIdx int, tx SessionTx) TupleIterator {
	return newFilterMapIterator(probe, func(lt value.Tuple) (value.Tuple, bool, error) {
		scan := tx.TripleAVScan(t.Attr.ID, lt[vIdx], t.Vld)
		has := scan.Next()
		err := scan.Err()
		_ = scan.Close()
		if err != nil {
			return nil, false, wrapStorageErr("triple_av_before_scan", err)
		}
		return lt, !has, nil
	})
}

// vNoIndexJoin (|R|=={1}, value not indexed): materialize a (v->e) map in
// a throwaway store, then probe it by prefix.
func (t *Triple) vNoIndexJoin(probe TupleIterator, vIdx int, tx SessionTx, elim map[int]struct{}) TupleIterator {
	throwaway := tx.NewThrowaway()
	scan := tx.TripleAScan(t.Attr.ID, t.Vld)
	if err := drainAEV(scan, func(r AEVRow) error {
		return throwaway.Put(value.Tuple{r.V, r.E}, 0)
	}); err != nil {
		_ = probe.Close()
		return newErrIterator(wrapStorageErr("triple_a_before_scan", err))
	}
	return newFlatMapIterator(probe, func(lt value.Tuple) (TupleIterator, error) {
		prefix := value.Tuple{lt[vIdx]}
		inner := throwaway.ScanPrefix(prefix)
		return newMapIterator(inner, func(found value.Tuple) value.Tuple {
			v := found[0]
			eid, err := value.AsEntityID(found[len(found)-1])
			if err != nil {
				return project(lt, elim)
			}
			return appendEV(lt, eid, v, elim)
		}), nil
	})
}

func (t *Triple) negVNoIndexJoin(probe TupleIterator, vIdx int, tx SessionTx) TupleIterator {
	return newFilterMapIterator(probe, func(lt value.Tuple) (value.Tuple, bool, error) {
		val := lt[vIdx]
		scan := tx.TripleAScan(t.Attr.ID, t.Vld)
		found := false
		err := drainAEV(scan, func(r AEVRow) error {
			if !found && value.Equal(val, r.V) {
				found = true
			}
			return nil
		})
		if err != nil {
			return nil, false, wrapStorageErr("triple_a_before_scan", err)
		}
		return lt, !found, nil
	})
}

func drainAEV(it AEVIterator, visit func(AEVRow) error) error {
	defer it.Close()
	for it.Next() {
		if err := visit(it.Row()); err != nil {
			return err
		}
	}
	return it.Err()
}
