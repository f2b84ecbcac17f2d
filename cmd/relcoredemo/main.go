// Command relcoredemo exercises the relation engine against a small
// in-process dataset, mirroring cmd/datalog's demo mode: load a handful of
// facts, build a few relation trees by hand (there is no query parser here,
// the compiler that would lower [:find ...] forms into Relation trees is
// out of scope) and print each result as a markdown table.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/wbrown/relcore/expr"
	"github.com/wbrown/relcore/relation"
	"github.com/wbrown/relcore/relation/debug"
	"github.com/wbrown/relcore/storage"
	"github.com/wbrown/relcore/value"
)

func main() {
	var dbPath string
	var showDebug bool
	var maxRows int

	flag.StringVar(&dbPath, "db", "", "badger database path (empty for in-memory)")
	flag.BoolVar(&showDebug, "debug", false, "print each relation tree before running it")
	flag.IntVar(&maxRows, "max-rows", 100, "maximum rows to materialize per query")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Runs a small fixed set of relation-tree queries against demo data.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	db, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	tx := db.BeginTx()
	if err := loadDemoData(tx); err != nil {
		log.Fatalf("failed to load demo data: %v", err)
	}
	if err := tx.Commit(); err != nil {
		log.Fatalf("failed to commit demo data: %v", err)
	}

	queryTx := db.BeginTx()
	defer queryTx.Discard()

	fmt.Println("=== relcore demo ===")
	for _, q := range demoQueries() {
		fmt.Printf("\n-- %s --\n", q.name)
		rel := q.build()
		relation.FillPredicateBindingIndices(rel)
		if showDebug {
			fmt.Println(rel.Debug())
		}
		table, err := debug.Table(rel, queryTx, maxRows)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Println(table)
	}
}

var (
	nameAttr   = value.Attribute{ID: "person/name", IsIndex: true}
	ageAttr    = value.Attribute{ID: "person/age"}
	cityAttr   = value.Attribute{ID: "person/city", IsIndex: true}
	friendAttr = value.Attribute{ID: "person/friend", IsRef: true}
)

const vld = value.Validity(1)

func loadDemoData(tx *storage.BadgerTx) error {
	alice := value.EntityID(1)
	bob := value.EntityID(2)
	charlie := value.EntityID(3)

	facts := []struct {
		e value.EntityID
		a value.Attribute
		v value.Value
	}{
		{alice, nameAttr, "Alice"},
		{alice, ageAttr, int64(30)},
		{alice, cityAttr, "New York"},
		{bob, nameAttr, "Bob"},
		{bob, ageAttr, int64(25)},
		{bob, cityAttr, "Boston"},
		{charlie, nameAttr, "Charlie"},
		{charlie, ageAttr, int64(35)},
		{charlie, cityAttr, "New York"},
		{alice, friendAttr, bob},
		{alice, friendAttr, charlie},
		{bob, friendAttr, charlie},
	}
	for _, f := range facts {
		if err := tx.PutTriple(f.e, f.a, f.v, vld); err != nil {
			return err
		}
	}
	return nil
}

type demoQuery struct {
	name  string
	build func() relation.Relation
}

// demoQueries builds the same shapes the teacher's runDemo prints, by hand:
// each is a Relation tree a query compiler would have produced.
func demoQueries() []demoQuery {
	return []demoQuery{
		{
			name: "every person's name and age",
			build: func() relation.Relation {
				names := relation.NewTriple(nameAttr, vld, "p", "name")
				ages := relation.NewTriple(ageAttr, vld, "p", "age")
				j := relation.NewJoin(names, ages, []value.Binding{"p"}, []value.Binding{"p"})
				must(relation.EliminateTempVars(j, []value.Binding{"name", "age"}))
				return relation.NewReorder(j, []value.Binding{"name", "age"})
			},
		},
		{
			name: "people in New York",
			build: func() relation.Relation {
				names := relation.NewTriple(nameAttr, vld, "p", "name")
				cities := relation.NewTriple(cityAttr, vld, "p", "city")
				j := relation.NewJoin(names, cities, []value.Binding{"p"}, []value.Binding{"p"})
				pred := &expr.Comparison{
					Op:    expr.OpEQ,
					Left:  &expr.Variable{Name: "city"},
					Right: &expr.Constant{Value: "New York"},
				}
				f := relation.NewFilter(j, pred)
				must(relation.EliminateTempVars(f, []value.Binding{"name"}))
				return relation.NewReorder(f, []value.Binding{"name"})
			},
		},
		{
			name: "Alice's friends",
			build: func() relation.Relation {
				aliceNames := relation.NewSinglet([]value.Binding{"name"}, value.Tuple{"Alice"})
				idByName := relation.NewTriple(nameAttr, vld, "alice", "name")
				friends := relation.NewTriple(friendAttr, vld, "alice", "friend")
				friendNames := relation.NewTriple(nameAttr, vld, "friend", "friend-name")

				step1 := relation.NewJoin(aliceNames, idByName, []value.Binding{"name"}, []value.Binding{"name"})
				step2 := relation.NewJoin(step1, friends, []value.Binding{"alice"}, []value.Binding{"alice"})
				step3 := relation.NewJoin(step2, friendNames, []value.Binding{"friend"}, []value.Binding{"friend"})
				must(relation.EliminateTempVars(step3, []value.Binding{"friend-name"}))
				return relation.NewReorder(step3, []value.Binding{"friend-name"})
			},
		},
		{
			name: "people over 28",
			build: func() relation.Relation {
				names := relation.NewTriple(nameAttr, vld, "p", "name")
				ages := relation.NewTriple(ageAttr, vld, "p", "age")
				j := relation.NewJoin(names, ages, []value.Binding{"p"}, []value.Binding{"p"})
				pred := &expr.Comparison{
					Op:    expr.OpGT,
					Left:  &expr.Variable{Name: "age"},
					Right: &expr.Constant{Value: int64(28)},
				}
				f := relation.NewFilter(j, pred)
				must(relation.EliminateTempVars(f, []value.Binding{"name", "age"}))
				return relation.NewReorder(f, []value.Binding{"name", "age"})
			},
		},
	}
}

func must(err error) {
	if err != nil {
		log.Fatalf("building demo query: %v", err)
	}
}
