package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/fieldops/internal/core/domain"
	"github.com/samirrijal/fieldops/internal/core/usecases"
)

func locationFields(l domain.Location) map[string]interface{} {
	return map[string]interface{}{
		"latitude":         l.Latitude,
		"longitude":        l.Longitude,
		"location_display": l.LocationDisplay,
		"geo_wkt":          l.GeoWKT,
	}
}

func customerObject(c *domain.CustomerMap) map[string]interface{} {
	m := locationFields(c.Location)
	m["id"] = c.ID
	m["name"] = c.Name
	m["display_name"] = c.DisplayName()
	m["description"] = c.Description
	m["phone"] = c.Phone
	m["email"] = c.Email
	m["active"] = c.Active
	return m
}

func orderObject(o *domain.InstallmentOrder) map[string]interface{} {
	m := locationFields(o.Location)
	m["id"] = o.ID
	m["title"] = o.Title
	m["address"] = o.Address
	m["status"] = string(o.Status)
	m["purchase_order_count"] = o.PurchaseOrderCount
	lines := make([]map[string]interface{}, 0, len(o.ProductLines))
	for _, l := range o.ProductLines {
		lines = append(lines, map[string]interface{}{
			"product_id":   l.ProductID,
			"product_name": l.ProductName,
			"quantity":     l.Quantity,
			"description":  l.Description,
		})
	}
	m["product_lines"] = lines
	return m
}

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	located := func(fields graphql.Fields) graphql.Fields {
		fields["latitude"] = &graphql.Field{Type: graphql.Float}
		fields["longitude"] = &graphql.Field{Type: graphql.Float}
		fields["location_display"] = &graphql.Field{Type: graphql.String}
		fields["geo_wkt"] = &graphql.Field{Type: graphql.String}
		return fields
	}

	customerType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Customer",
		Fields: located(graphql.Fields{
			"id":           &graphql.Field{Type: graphql.Int},
			"name":         &graphql.Field{Type: graphql.String},
			"display_name": &graphql.Field{Type: graphql.String},
			"description":  &graphql.Field{Type: graphql.String},
			"phone":        &graphql.Field{Type: graphql.String},
			"email":        &graphql.Field{Type: graphql.String},
			"active":       &graphql.Field{Type: graphql.Boolean},
		}),
	})

	orderLineType := graphql.NewObject(graphql.ObjectConfig{
		Name: "OrderProductLine",
		Fields: graphql.Fields{
			"product_id":   &graphql.Field{Type: graphql.Int},
			"product_name": &graphql.Field{Type: graphql.String},
			"quantity":     &graphql.Field{Type: graphql.Float},
			"description":  &graphql.Field{Type: graphql.String},
		},
	})

	orderType := graphql.NewObject(graphql.ObjectConfig{
		Name: "InstallmentOrder",
		Fields: located(graphql.Fields{
			"id":                   &graphql.Field{Type: graphql.Int},
			"title":                &graphql.Field{Type: graphql.String},
			"address":              &graphql.Field{Type: graphql.String},
			"status":               &graphql.Field{Type: graphql.String},
			"purchase_order_count": &graphql.Field{Type: graphql.Int},
			"product_lines":        &graphql.Field{Type: graphql.NewList(orderLineType)},
		}),
	})

	mapLocationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "MapLocation",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.Int},
			"title":            &graphql.Field{Type: graphql.String},
			"description":      &graphql.Field{Type: graphql.String},
			"latitude":         &graphql.Field{Type: graphql.Float},
			"longitude":        &graphql.Field{Type: graphql.Float},
			"location_display": &graphql.Field{Type: graphql.String},
			"active":           &graphql.Field{Type: graphql.Boolean},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"customers": &graphql.Field{
				Type:        graphql.NewList(customerType),
				Description: "Search customer map entries",
				Args: graphql.FieldConfigArgument{
					"q":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, _, err := deps.Customers.List(p.Context, domain.CustomerFilter{
						Query:  p.Args["q"].(string),
						Offset: p.Args["offset"].(int),
						Limit:  p.Args["limit"].(int),
					})
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, len(rows))
					for i := range rows {
						out[i] = customerObject(&rows[i])
					}
					return out, nil
				},
			},
			"customer": &graphql.Field{
				Type:        customerType,
				Description: "Get a customer by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					c, err := deps.Customers.Get(p.Context, int64(p.Args["id"].(int)))
					if err != nil {
						return nil, err
					}
					return customerObject(c), nil
				},
			},
			"orders": &graphql.Field{
				Type:        graphql.NewList(orderType),
				Description: "List installment orders",
				Args: graphql.FieldConfigArgument{
					"status": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					rows, _, err := deps.Orders.List(p.Context, domain.OrderFilter{
						Status: domain.OrderStatus(p.Args["status"].(string)),
						Offset: p.Args["offset"].(int),
						Limit:  p.Args["limit"].(int),
					})
					if err != nil {
						return nil, err
					}
					out := make([]map[string]interface{}, len(rows))
					for i := range rows {
						out[i] = orderObject(&rows[i])
					}
					return out, nil
				},
			},
			"order": &graphql.Field{
				Type:        orderType,
				Description: "Get an installment order by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					o, err := deps.Orders.Get(p.Context, int64(p.Args["id"].(int)))
					if err != nil {
						return nil, err
					}
					return orderObject(o), nil
				},
			},
			"mapLocations": &graphql.Field{
				Type:        graphql.NewList(mapLocationType),
				Description: "Dashboard pins of an entity, optionally within radius metres of lat/lon",
				Args: graphql.FieldConfigArgument{
					"entity": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"lat":    &graphql.ArgumentConfig{Type: graphql.Float},
					"lon":    &graphql.ArgumentConfig{Type: graphql.Float},
					"radius": &graphql.ArgumentConfig{Type: graphql.Float, DefaultValue: 1000.0},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					name := p.Args["entity"].(string)
					entity, ok := mapEntities[name]
					if !ok {
						entity = domain.EntityKind(name)
					}
					var near *usecases.NearFilter
					lat, hasLat := p.Args["lat"].(float64)
					lon, hasLon := p.Args["lon"].(float64)
					if hasLat && hasLon {
						near = &usecases.NearFilter{Lat: lat, Lon: lon, RadiusMeters: p.Args["radius"].(float64)}
					}
					return deps.Map.Locations(p.Context, entity, near)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query: queryType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
