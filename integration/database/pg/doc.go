// Package pg provides PostgreSQL connection management with retrying
// connects, goose migrations, health checking, and error classification on
// top of the pgx driver.
//
// Example:
//
//	pool, err := pg.Connect(ctx, cfg.Pg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, storage.Migrations, "migrations", log); err != nil {
//	    return err
//	}
//
// Tx runs a function inside a transaction carried on the context;
// repositories resolve it with TxFromContext and join automatically.
package pg
