package phenotype

import (
	"errors"
	"fmt"
)

// AttributeName is the attribute key Attach stores the phenotype under.
const AttributeName = "phenotype"

// ErrNilCarrier is returned by Attach when no carrier is supplied.
var ErrNilCarrier = errors.New("nil carrier")

// Carrier is any simulation object that can hold named attributes, typically
// a cell agent of a host framework.
type Carrier interface {
	SetAttribute(name string, value any) error
}

// Attach equips carrier with a phenotype stored under AttributeName. ref is
// either a catalog name (see Names) or an existing *Phenotype; in both cases
// the carrier receives an independent clone, so one template phenotype can
// seed any number of cells without shared state. The attached clone is
// returned for further configuration.
func Attach(carrier Carrier, ref any, opts Options) (*Phenotype, error) {
	if carrier == nil {
		return nil, ErrNilCarrier
	}

	var template *Phenotype
	switch r := ref.(type) {
	case string:
		built, err := New(r, opts)
		if err != nil {
			return nil, err
		}
		template = built
	case *Phenotype:
		if r == nil {
			return nil, errors.New("nil phenotype")
		}
		template = r
	default:
		return nil, fmt.Errorf("phenotype reference must be a catalog name or a *Phenotype, got %T", ref)
	}

	attached := template.Clone()
	if err := carrier.SetAttribute(AttributeName, attached); err != nil {
		return nil, fmt.Errorf("attach phenotype %q: %w", attached.Name(), err)
	}
	return attached, nil
}
