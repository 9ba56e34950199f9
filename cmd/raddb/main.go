// Package main implements the raddb demo binary, which exercises the
// relation storage and relational-algebra query engine end to end: it
// builds a couple of relations, inserts tuples, constructs a query tree,
// optimizes it, executes it, and prints the resulting rows.
//
// raddb is not a SQL shell — there is no parser and no REPL. A flag
// selects which built-in scenario to run, the way the teacher's node
// binary picked its behavior from environment configuration rather than
// free-form input.
//
// Example usage:
//
//	raddb -scenario=join
//	raddb -scenario=optimize -root=/tmp/raddb-demo
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dreamware/raddb/internal/identifier"
	"github.com/dreamware/raddb/internal/query"
	"github.com/dreamware/raddb/internal/relation"
	"github.com/dreamware/raddb/internal/storelog"
	"github.com/dreamware/raddb/internal/tuple"
	"github.com/dreamware/raddb/internal/types"
	"go.uber.org/zap"
)

// logFatal is a variable to allow mocking log.Fatal-style termination in
// tests without actually ending the test process.
var logFatal = func(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	scenario := flag.String("scenario", "join", "demo scenario to run: join, optimize, outer")
	root := flag.String("root", "", "storage root for relation files (default: a temp directory)")
	dev := flag.Bool("dev", false, "use a development (console) logger instead of the production JSON logger")
	flag.Parse()

	if *dev {
		l, err := zap.NewDevelopment()
		if err != nil {
			logFatal("building development logger: %v", err)
		}
		storelog.SetLogger(l)
	}
	log := storelog.Named("raddb")

	storageRoot := *root
	if storageRoot == "" {
		dir, err := os.MkdirTemp("", "raddb-demo-")
		if err != nil {
			logFatal("creating storage root: %v", err)
		}
		storageRoot = dir
		defer os.RemoveAll(storageRoot)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		if err := run(*scenario, storageRoot, log); err != nil {
			logFatal("scenario %q failed: %v", *scenario, err)
		}
	}()

	select {
	case <-done:
	case <-stop:
		log.Info("interrupted, shutting down")
	}
}

func run(scenario, storageRoot string, log *zap.SugaredLogger) error {
	switch scenario {
	case "join":
		return runJoinDemo(storageRoot, log)
	case "optimize":
		return runOptimizeDemo(storageRoot, log)
	case "outer":
		return runOuterJoinDemo(storageRoot, log)
	default:
		return fmt.Errorf("unknown scenario %q (want join, optimize, or outer)", scenario)
	}
}

// runJoinDemo builds a `users` and an `orders` relation, joins them on
// user ID, and prints the result.
func runJoinDemo(storageRoot string, log *zap.SugaredLogger) error {
	usersTable := identifier.FromParts("db", "users")
	usersDef := relation.NewDefinition(
		relation.Column{ID: identifier.WithParent(usersTable, "id"), Kind: types.KindUint64},
		relation.Column{ID: identifier.WithParent(usersTable, "name"), Kind: types.KindString},
	)
	users := relation.New(storageRoot, usersTable, usersDef, []int{0}, 16)
	defer users.Close()

	ordersTable := identifier.FromParts("db", "orders")
	ordersDef := relation.NewDefinition(
		relation.Column{ID: identifier.WithParent(ordersTable, "id"), Kind: types.KindUint64},
		relation.Column{ID: identifier.WithParent(ordersTable, "user_id"), Kind: types.KindUint64},
		relation.Column{ID: identifier.WithParent(ordersTable, "total"), Kind: types.KindUint64},
	)
	orders := relation.New(storageRoot, ordersTable, ordersDef, []int{0}, 16)
	defer orders.Close()

	names := []string{"ada", "grace", "linus"}
	for i, name := range names {
		if _, err := users.Insert(tuple.New(types.Uint64(uint64(i)), types.String(name))); err != nil {
			return err
		}
	}
	orderRows := []struct {
		id, userID, total uint64
	}{
		{100, 0, 42}, {101, 0, 7}, {102, 1, 99}, {103, 2, 15},
	}
	for _, o := range orderRows {
		if _, err := orders.Insert(tuple.New(types.Uint64(o.id), types.Uint64(o.userID), types.Uint64(o.total))); err != nil {
			return err
		}
	}

	tree := query.InnerJoin(
		query.Source(users),
		query.Source(orders),
		query.NewJoinCondition(identifier.WithParent(usersTable, "id"), identifier.WithParent(ordersTable, "user_id")),
	)
	result, err := query.Execute(tree)
	if err != nil {
		return err
	}

	log.Infow("join demo complete", "rows", result.Len(), "created_tuples", result.TotalCreatedTuples())
	for _, t := range result.Tuples() {
		fmt.Printf("user=%s order=%d total=%d\n", t.At(1).AsString(), t.At(2).AsUint64(), t.At(4).AsUint64())
	}
	return nil
}

// runOptimizeDemo builds a selection-heavy tree over a larger relation and
// prints how the optimizer rewrote it.
func runOptimizeDemo(storageRoot string, log *zap.SugaredLogger) error {
	table := identifier.FromParts("db", "measurements")
	def := relation.NewDefinition(
		relation.Column{ID: identifier.WithParent(table, "id"), Kind: types.KindUint64},
	)
	rel := relation.New(storageRoot, table, def, []int{0}, 32)
	defer rel.Close()

	for i := uint64(0); i < 1000; i++ {
		if _, err := rel.Insert(tuple.New(types.Uint64(i))); err != nil {
			return err
		}
	}

	field := identifier.WithParent(table, "id")
	tree := query.SelectOnCondition(query.Source(rel), query.And(
		query.NewCondition(field, query.Equals(query.OperandUnsignedNumber(32))),
		query.NewCondition(field, query.Nequals(query.OperandUnsignedNumber(34))),
	))

	beforeNodes := tree.Nodes()
	beforeEstimate := tree.ApproximateCreatedTuples()

	optimizer, err := query.NewOptimizer(tree, 50)
	if err != nil {
		return err
	}
	ratio := optimizer.Optimize()
	optimized := optimizer.Root()

	result, err := query.Execute(optimized)
	if err != nil {
		return err
	}

	log.Infow("optimize demo complete",
		"nodes_before", beforeNodes, "nodes_after", optimized.Nodes(),
		"estimate_before", beforeEstimate, "estimate_after", optimized.ApproximateCreatedTuples(),
		"cost_ratio", ratio)
	for _, t := range result.Tuples() {
		fmt.Printf("id=%d\n", t.At(0).AsUint64())
	}
	return nil
}

// runOuterJoinDemo demonstrates NULL-padding on an unmatched left join.
func runOuterJoinDemo(storageRoot string, log *zap.SugaredLogger) error {
	leftTable := identifier.FromParts("db", "authors")
	leftDef := relation.NewDefinition(
		relation.Column{ID: identifier.WithParent(leftTable, "id"), Kind: types.KindUint64},
		relation.Column{ID: identifier.WithParent(leftTable, "name"), Kind: types.KindString},
	)
	left := relation.New(storageRoot, leftTable, leftDef, []int{0}, 16)
	defer left.Close()

	rightTable := identifier.FromParts("db", "books")
	rightDef := relation.NewDefinition(
		relation.Column{ID: identifier.WithParent(rightTable, "author_id"), Kind: types.KindUint64},
		relation.Column{ID: identifier.WithParent(rightTable, "title"), Kind: types.KindString},
	)
	right := relation.New(storageRoot, rightTable, rightDef, []int{0}, 16)
	defer right.Close()

	authors := []string{"ada", "grace", "linus"}
	for i, name := range authors {
		if _, err := left.Insert(tuple.New(types.Uint64(uint64(i)), types.String(name))); err != nil {
			return err
		}
	}
	if _, err := right.Insert(tuple.New(types.Uint64(0), types.String("first bug report"))); err != nil {
		return err
	}

	tree := query.LeftJoin(
		query.Source(left),
		query.Source(right),
		query.NewJoinCondition(identifier.WithParent(leftTable, "id"), identifier.WithParent(rightTable, "author_id")),
	)
	result, err := query.Execute(tree)
	if err != nil {
		return err
	}

	log.Infow("outer join demo complete", "rows", result.Len())
	for _, t := range result.Tuples() {
		title := "<none>"
		if !t.At(3).IsNull() {
			title = t.At(3).AsString()
		}
		fmt.Printf("author=%s title=%s\n", t.At(1).AsString(), title)
	}
	return nil
}
