// Package schematest provides a small museum collections schema for tests.
package schematest

import "upload-mapper/internal/schema"

// Museum returns a fresh copy of the fixture schema. It contains self-references
// (Agent.organization), to-many relationships (determinations, collectors,
// preparations) and two tree tables (Taxon, Geography).
func Museum() *schema.Schema {
	return schema.New(
		collectionObject(),
		collectingEvent(),
		collector(),
		agent(),
		determination(),
		taxon(),
		locality(),
		geography(),
		preparation(),
		prepType(),
	)
}

func collectionObject() *schema.Table {
	return &schema.Table{
		Name:  "CollectionObject",
		Label: "Collection Object",
		Fields: []schema.Field{
			{Name: "catalogNumber", Label: "Catalog Number", Type: "string", Aliases: []string{"Cat Num", "Catalog No"}},
			{Name: "altCatalogNumber", Label: "Alt Catalog Number", Type: "string"},
			{Name: "countAmt", Label: "Count", Type: "integer"},
			{Name: "remarks", Label: "Remarks", Type: "text"},
			{Name: "guid", Label: "GUID", Type: "string", Hidden: true},
		},
		Relationships: []schema.Relationship{
			{Name: "collectingEvent", Label: "Collecting Event", Type: schema.ManyToOne, RelatedTable: "CollectingEvent", OtherSideName: "collectionObjects"},
			{Name: "cataloger", Label: "Cataloger", Type: schema.ManyToOne, RelatedTable: "Agent"},
			{Name: "determinations", Label: "Determinations", Type: schema.OneToMany, RelatedTable: "Determination", OtherSideName: "collectionObject"},
			{Name: "preparations", Label: "Preparations", Type: schema.OneToMany, RelatedTable: "Preparation", OtherSideName: "collectionObject"},
		},
	}
}

func collectingEvent() *schema.Table {
	return &schema.Table{
		Name:  "CollectingEvent",
		Label: "Collecting Event",
		Fields: []schema.Field{
			{Name: "startDate", Label: "Start Date", Type: "date"},
			{Name: "endDate", Label: "End Date", Type: "date"},
			{Name: "stationFieldNumber", Label: "Field Number", Type: "string"},
			{Name: "verbatimDate", Label: "Verbatim Date", Type: "string"},
			{Name: "remarks", Label: "Remarks", Type: "text"},
		},
		Relationships: []schema.Relationship{
			{Name: "locality", Label: "Locality", Type: schema.ManyToOne, RelatedTable: "Locality", OtherSideName: "collectingEvents"},
			{Name: "collectors", Label: "Collectors", Type: schema.OneToMany, RelatedTable: "Collector", OtherSideName: "collectingEvent"},
			{Name: "collectionObjects", Label: "Collection Objects", Type: schema.OneToMany, RelatedTable: "CollectionObject", OtherSideName: "collectingEvent"},
		},
	}
}

func collector() *schema.Table {
	return &schema.Table{
		Name:  "Collector",
		Label: "Collector",
		Fields: []schema.Field{
			{Name: "isPrimary", Label: "Is Primary", Type: "boolean", Required: true},
			{Name: "orderNumber", Label: "Order Number", Type: "integer"},
			{Name: "remarks", Label: "Remarks", Type: "text"},
		},
		Relationships: []schema.Relationship{
			{Name: "agent", Label: "Agent", Type: schema.ManyToOne, RelatedTable: "Agent", Required: true},
			{Name: "collectingEvent", Label: "Collecting Event", Type: schema.ManyToOne, RelatedTable: "CollectingEvent", OtherSideName: "collectors", Required: true},
		},
	}
}

func agent() *schema.Table {
	return &schema.Table{
		Name:  "Agent",
		Label: "Agent",
		Fields: []schema.Field{
			{Name: "agentType", Label: "Agent Type", Type: "integer", Required: true},
			{Name: "firstName", Label: "First Name", Type: "string"},
			{Name: "lastName", Label: "Last Name", Type: "string", Aliases: []string{"Surname", "Family Name"}},
			{Name: "middleInitial", Label: "Middle Initial", Type: "string"},
			{Name: "title", Label: "Title", Type: "string"},
			{Name: "email", Label: "Email", Type: "string"},
		},
		Relationships: []schema.Relationship{
			{Name: "organization", Label: "Organization", Type: schema.ManyToOne, RelatedTable: "Agent", OtherSideName: "members"},
			{Name: "members", Label: "Members", Type: schema.OneToMany, RelatedTable: "Agent", OtherSideName: "organization"},
		},
	}
}

func determination() *schema.Table {
	return &schema.Table{
		Name:  "Determination",
		Label: "Determination",
		Fields: []schema.Field{
			{Name: "determinedDate", Label: "Determined Date", Type: "date"},
			{Name: "isCurrent", Label: "Is Current", Type: "boolean", Required: true},
			{Name: "typeStatusName", Label: "Type Status", Type: "string"},
			{Name: "remarks", Label: "Remarks", Type: "text"},
		},
		Relationships: []schema.Relationship{
			{Name: "taxon", Label: "Taxon", Type: schema.ManyToOne, RelatedTable: "Taxon"},
			{Name: "determiner", Label: "Determiner", Type: schema.ManyToOne, RelatedTable: "Agent"},
			{Name: "collectionObject", Label: "Collection Object", Type: schema.ManyToOne, RelatedTable: "CollectionObject", OtherSideName: "determinations", Required: true},
		},
	}
}

func taxon() *schema.Table {
	return &schema.Table{
		Name:  "Taxon",
		Label: "Taxon",
		Ranks: []string{"Kingdom", "Family", "Genus", "Species", "Subspecies"},
		Fields: []schema.Field{
			{Name: "name", Label: "Name", Type: "string", Required: true},
			{Name: "author", Label: "Author", Type: "string"},
			{Name: "commonName", Label: "Common Name", Type: "string"},
		},
		Relationships: []schema.Relationship{
			{Name: "parent", Label: "Parent", Type: schema.ManyToOne, RelatedTable: "Taxon", OtherSideName: "children"},
			{Name: "children", Label: "Children", Type: schema.OneToMany, RelatedTable: "Taxon", OtherSideName: "parent"},
		},
	}
}

func locality() *schema.Table {
	return &schema.Table{
		Name:  "Locality",
		Label: "Locality",
		Fields: []schema.Field{
			{Name: "localityName", Label: "Locality Name", Type: "string", Required: true},
			{Name: "latitude1", Label: "Latitude 1", Type: "decimal", Aliases: []string{"Latitude", "Lat"}},
			{Name: "longitude1", Label: "Longitude 1", Type: "decimal", Aliases: []string{"Longitude", "Long"}},
			{Name: "remarks", Label: "Remarks", Type: "text"},
		},
		Relationships: []schema.Relationship{
			{Name: "geography", Label: "Geography", Type: schema.ManyToOne, RelatedTable: "Geography"},
			{Name: "collectingEvents", Label: "Collecting Events", Type: schema.OneToMany, RelatedTable: "CollectingEvent", OtherSideName: "locality"},
		},
	}
}

func geography() *schema.Table {
	return &schema.Table{
		Name:  "Geography",
		Label: "Geography",
		Ranks: []string{"Continent", "Country", "State", "County"},
		Fields: []schema.Field{
			{Name: "name", Label: "Name", Type: "string", Required: true},
			{Name: "abbrev", Label: "Abbreviation", Type: "string"},
		},
		Relationships: []schema.Relationship{
			{Name: "parent", Label: "Parent", Type: schema.ManyToOne, RelatedTable: "Geography", OtherSideName: "children"},
		},
	}
}

func preparation() *schema.Table {
	return &schema.Table{
		Name:  "Preparation",
		Label: "Preparation",
		Fields: []schema.Field{
			{Name: "countAmt", Label: "Count", Type: "integer"},
			{Name: "remarks", Label: "Remarks", Type: "text"},
		},
		Relationships: []schema.Relationship{
			{Name: "prepType", Label: "Prep Type", Type: schema.ManyToOne, RelatedTable: "PrepType", Required: true},
			{Name: "collectionObject", Label: "Collection Object", Type: schema.ManyToOne, RelatedTable: "CollectionObject", OtherSideName: "preparations", Required: true},
		},
	}
}

func prepType() *schema.Table {
	return &schema.Table{
		Name:  "PrepType",
		Label: "Prep Type",
		Fields: []schema.Field{
			{Name: "name", Label: "Name", Type: "string", Required: true},
			{Name: "isLoanable", Label: "Is Loanable", Type: "boolean"},
		},
	}
}
