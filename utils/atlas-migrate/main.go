// Package main - Atlas GORM migration support binary
package main

import (
	"fmt"

	"ariga.io/atlas-provider-gorm/gormschema"
	"github.com/apex/log"
	"github.com/barreldb/barrel/db"
)

func main() {
	stmts, err := gormschema.New("postgres").Load(
		&db.LibraryDBEntry{},
		&db.SnapshotDBEntry{},
		&db.SequenceRecordDBEntry{},
		&db.TaxonomyNodeDBEntry{},
		&db.ChangeEventDBEntry{},
	)
	if err != nil {
		log.WithError(err).Fatal("Failed to load GORM models")
	}
	fmt.Printf("%s\n", stmts)
}
