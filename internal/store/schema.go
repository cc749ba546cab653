package store

const schema = `
CREATE TABLE IF NOT EXISTS mappings (
  program TEXT NOT NULL,
  mapping TEXT NOT NULL,
  key BLOB NOT NULL,
  value BLOB NOT NULL,
  PRIMARY KEY (program, mapping, key)
);

CREATE TABLE IF NOT EXISTS commitments (
  position INTEGER NOT NULL PRIMARY KEY,
  commitment BLOB NOT NULL UNIQUE
);
`
