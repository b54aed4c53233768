package database

// Schema is the idempotent DDL for decision storage. Amounts and rates are
// NUMERIC so no value ever passes through a float.
const Schema = `
CREATE TABLE IF NOT EXISTS credit_decisions (
	id                  UUID PRIMARY KEY,
	application_id      TEXT NOT NULL UNIQUE,
	document_id         TEXT NOT NULL,
	vehicle_vin         CHAR(17) NOT NULL,
	status              TEXT NOT NULL CHECK (status IN ('APPROVED', 'REJECTED')),
	credit_score        INTEGER NOT NULL CHECK (credit_score BETWEEN 300 AND 900),
	risk_level          TEXT CHECK (risk_level IN ('LOW', 'MEDIUM', 'HIGH')),
	requested_amount    NUMERIC(18, 2) NOT NULL,
	max_eligible_amount NUMERIC(18, 2) NOT NULL,
	approved_amount     NUMERIC(18, 2) NOT NULL,
	interest_rate       NUMERIC(7, 4) NOT NULL,
	recommended_rate    NUMERIC(7, 4) NOT NULL,
	term_months         INTEGER NOT NULL,
	monthly_installment NUMERIC(18, 2) NOT NULL,
	total_interest      NUMERIC(18, 2) NOT NULL,
	eligibility         JSONB NOT NULL,
	assessment          JSONB,
	reasons             JSONB NOT NULL DEFAULT '[]'::jsonb,
	batch_id            TEXT,
	decided_at          TIMESTAMPTZ NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_credit_decisions_document ON credit_decisions (document_id, decided_at DESC);
CREATE INDEX IF NOT EXISTS idx_credit_decisions_batch ON credit_decisions (batch_id) WHERE batch_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS idx_credit_decisions_status ON credit_decisions (status, decided_at DESC);
`
