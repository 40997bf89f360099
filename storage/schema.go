package storage

import "strings"

// schema is written once and specialised per driver by dialectReplacer.
const schema = `
CREATE TABLE IF NOT EXISTS dealers (
	dealer_id  {{serial}},
	name       VARCHAR(255) NOT NULL,
	street     VARCHAR(255) NOT NULL DEFAULT '',
	city       VARCHAR(255) NOT NULL,
	state      VARCHAR(2)   NOT NULL,
	zip        VARCHAR(10)  NOT NULL,
	CONSTRAINT dealer_natural_key UNIQUE (name, street, city, state, zip)
);

CREATE TABLE IF NOT EXISTS vehicle_models (
	model_id   {{serial}},
	make       VARCHAR(255) NOT NULL,
	model      VARCHAR(255) NOT NULL,
	CONSTRAINT make_model UNIQUE (make, model)
);

CREATE TABLE IF NOT EXISTS listings (
	vin            VARCHAR(17)  PRIMARY KEY,
	year           SMALLINT     NOT NULL,
	model_id       INTEGER      NOT NULL REFERENCES vehicle_models(model_id) ON DELETE CASCADE,
	trim           VARCHAR(255),
	dealer_id      INTEGER      NOT NULL REFERENCES dealers(dealer_id) ON DELETE CASCADE,
	price          NUMERIC(10,2),
	mileage        INTEGER,
	used           BOOLEAN      NOT NULL DEFAULT TRUE,
	certified      BOOLEAN      NOT NULL DEFAULT FALSE,
	style          VARCHAR(255),
	driven_wheels  VARCHAR(255),
	engine         VARCHAR(255),
	fuel_type      VARCHAR(255),
	exterior_color VARCHAR(255),
	interior_color VARCHAR(255),
	first_seen     DATE         NOT NULL,
	last_seen      DATE         NOT NULL,
	vdp_last_seen  DATE,
	status         VARCHAR(20)
);

CREATE INDEX IF NOT EXISTS idx_year_model ON listings(year, model_id);
CREATE INDEX IF NOT EXISTS idx_mileage    ON listings(mileage);

CREATE TABLE IF NOT EXISTS dealer_websites (
	dealer_id  INTEGER      PRIMARY KEY REFERENCES dealers(dealer_id) ON DELETE CASCADE,
	url        VARCHAR(255) NOT NULL
);

CREATE TABLE IF NOT EXISTS predictions (
	id               {{serial}},
	year             SMALLINT         NOT NULL,
	model_id         INTEGER          NOT NULL REFERENCES vehicle_models(model_id) ON DELETE CASCADE,
	mileage          INTEGER,
	predicted_price  DOUBLE PRECISION NOT NULL,
	confidence_score DOUBLE PRECISION NOT NULL,
	sample_size      INTEGER          NOT NULL,
	created_at       {{timestamp}}    NOT NULL DEFAULT {{now}},
	last_used_at     {{timestamp}}    NOT NULL DEFAULT {{now}}
);

CREATE INDEX IF NOT EXISTS idx_year_model_mileage ON predictions(year, model_id, mileage);
`

var dialectReplacers = map[string]*strings.Replacer{
	DriverPostgres: strings.NewReplacer(
		"{{serial}}", "SERIAL PRIMARY KEY",
		"{{timestamp}}", "TIMESTAMPTZ",
		"{{now}}", "NOW()",
	),
	DriverSQLite: strings.NewReplacer(
		"{{serial}}", "INTEGER PRIMARY KEY AUTOINCREMENT",
		"{{timestamp}}", "TIMESTAMP",
		"{{now}}", "CURRENT_TIMESTAMP",
	),
}

// schemaStatements returns the DDL for driver split into single statements.
func schemaStatements(driver string) []string {
	ddl := dialectReplacers[driver].Replace(schema)

	var stmts []string
	for _, s := range strings.Split(ddl, ";") {
		if s = strings.TrimSpace(s); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
