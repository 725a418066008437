package repository

const schemaSQL = `
CREATE TABLE IF NOT EXISTS businesses (
	id   BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	type TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS entities (
	id          BIGSERIAL PRIMARY KEY,
	business_id BIGINT NOT NULL REFERENCES businesses(id) ON DELETE CASCADE,
	name        TEXT NOT NULL,
	type        TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS ledgers (
	id               BIGSERIAL PRIMARY KEY,
	entity_id        BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
	name             TEXT NOT NULL,
	type             TEXT NOT NULL DEFAULT '',
	starting_balance DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS recurrings (
	id                BIGSERIAL PRIMARY KEY,
	ledger_id         BIGINT NOT NULL REFERENCES ledgers(id) ON DELETE CASCADE,
	from_ledger_id    BIGINT REFERENCES ledgers(id) ON DELETE SET NULL,
	type              TEXT NOT NULL CHECK (type IN ('debit', 'credit')),
	description       TEXT NOT NULL DEFAULT '',
	amount            DOUBLE PRECISION NOT NULL CHECK (amount >= 0),
	frequency         TEXT NOT NULL,
	start_date        DATE NOT NULL,
	end_date          DATE,
	last_payment_date DATE,
	next_payment_date DATE,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS transactions (
	id             BIGSERIAL PRIMARY KEY,
	ledger_id      BIGINT NOT NULL REFERENCES ledgers(id) ON DELETE CASCADE,
	from_ledger_id BIGINT REFERENCES ledgers(id) ON DELETE SET NULL,
	recurring_id   BIGINT REFERENCES recurrings(id) ON DELETE SET NULL,
	occurred_at    TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	type           TEXT NOT NULL CHECK (type IN ('debit', 'credit')),
	description    TEXT NOT NULL DEFAULT '',
	amount         DOUBLE PRECISION NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
	CHECK ((type = 'credit' AND amount >= 0) OR (type = 'debit' AND amount <= 0))
);

CREATE INDEX IF NOT EXISTS transactions_ledger_occurred_idx ON transactions (ledger_id, occurred_at);
CREATE INDEX IF NOT EXISTS recurrings_ledger_idx ON recurrings (ledger_id);
CREATE INDEX IF NOT EXISTS recurrings_next_payment_idx ON recurrings (next_payment_date);
`
