package gateway

import "strconv"

// Entity query types mirror the remote search API: a filter tree of leaf
// equality conditions combined with boolean nodes, plus ordering and a
// result cap.

type EntityQueryFilterType string

const (
	FilterLeaf EntityQueryFilterType = "LEAF"
	FilterAnd  EntityQueryFilterType = "_AND"
	FilterOr   EntityQueryFilterType = "_OR"
)

const OperatorEquals = "EQUALS"

type EntityQueryFilter struct {
	Type      EntityQueryFilterType `json:"type"`
	FieldName string                `json:"fieldName,omitempty"`
	Operator  string                `json:"operator,omitempty"`
	Value     any                   `json:"value,omitempty"`
	Children  []EntityQueryFilter   `json:"children,omitempty"`
}

type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

type EntityQueryOrderBy struct {
	FieldName string    `json:"fieldName"`
	Sorting   SortOrder `json:"sorting"`
}

type EntityQuery struct {
	Filter           *EntityQueryFilter   `json:"filter,omitempty"`
	OrderBys         []EntityQueryOrderBy `json:"orderBys,omitempty"`
	NumberOfEntities int                  `json:"numberOfEntities,omitempty"`
}

// LeafFilter builds an equality condition on a single field.
func LeafFilter(fieldName string, value any) EntityQueryFilter {
	return EntityQueryFilter{
		Type:      FilterLeaf,
		FieldName: fieldName,
		Operator:  OperatorEquals,
		Value:     value,
	}
}

// AndFilter combines conditions so that all of them must hold.
func AndFilter(children ...EntityQueryFilter) EntityQueryFilter {
	return EntityQueryFilter{
		Type:     FilterAnd,
		Children: children,
	}
}

// PendingCustomerTransactionQuery matches the newest pending transaction
// belonging to the given customer, identified by both customer id and email.
func PendingCustomerTransactionQuery(customerID int64, email string) EntityQuery {
	filter := AndFilter(
		LeafFilter("state", string(StatePending)),
		LeafFilter("customerId", strconv.FormatInt(customerID, 10)),
		LeafFilter("customerEmailAddress", email),
	)
	return EntityQuery{
		Filter:           &filter,
		OrderBys:         []EntityQueryOrderBy{{FieldName: "createdOn", Sorting: SortDesc}},
		NumberOfEntities: 1,
	}
}
