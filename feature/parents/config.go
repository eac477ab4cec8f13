package parents

import (
	"errors"
	"fmt"
)

// Config holds the parameters of a parent-reference audit.
type Config struct {
	// PartitionID restricts the audit to one partition of the record stream.
	PartitionID int64 `mapstructure:"partition_id" default:"1"`
	// ImportPosition only audits records with a strictly greater position.
	ImportPosition int64 `mapstructure:"import_position" default:"0"`
	// RecordIndex is the index pattern of exported process-instance records.
	RecordIndex string `mapstructure:"record_index" default:"zeebe-record_process-instance_*"`
	// TargetIndex is the index pattern of the read model holding existing instances.
	TargetIndex string `mapstructure:"target_index" default:"operate*"`
	// PageSize is the number of records per page of the record scan.
	PageSize int `mapstructure:"page_size" default:"3000"`
	// CheckPageSize is the number of records per page of each existence check.
	CheckPageSize int `mapstructure:"check_page_size" default:"1000"`
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.PartitionID < 1 {
		errs = append(errs, fmt.Errorf("partition_id must be at least 1, got %d", c.PartitionID))
	}
	if c.RecordIndex == "" {
		errs = append(errs, errors.New("record_index is required"))
	}
	if c.TargetIndex == "" {
		errs = append(errs, errors.New("target_index is required"))
	}
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("page_size must be positive, got %d", c.PageSize))
	}
	if c.CheckPageSize <= 0 {
		errs = append(errs, fmt.Errorf("check_page_size must be positive, got %d", c.CheckPageSize))
	}
	return errors.Join(errs...)
}
