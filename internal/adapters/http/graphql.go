package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/lapwatch/internal/core/domain"
)

// buildSchema creates the GraphQL schema wired to the lap service.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	referenceType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ReferencePoint",
		Fields: graphql.Fields{
			"position":    &graphql.Field{Type: geoPointType},
			"senderStamp": &graphql.Field{Type: graphql.Int},
			"capturedAt":  &graphql.Field{Type: graphql.String},
		},
	})

	statusType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LapStatus",
		Fields: graphql.Fields{
			"lapCount":     &graphql.Field{Type: graphql.Int},
			"zone":         &graphql.Field{Type: graphql.String},
			"lastDistance": &graphql.Field{Type: graphql.Float},
			"samples":      &graphql.Field{Type: graphql.Int},
			"dropped":      &graphql.Field{Type: graphql.Int},
			"rejected":     &graphql.Field{Type: graphql.Int},
			"reference":    &graphql.Field{Type: referenceType},
			"updatedAt":    &graphql.Field{Type: graphql.String},
		},
	})

	configType := graphql.NewObject(graphql.ObjectConfig{
		Name: "LapConfig",
		Fields: graphql.Fields{
			"outerRadius": &graphql.Field{Type: graphql.Float},
			"innerRadius": &graphql.Field{Type: graphql.Float},
			"period":      &graphql.Field{Type: graphql.Int},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"status": &graphql.Field{
				Type:        statusType,
				Description: "Live lap counter",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return statusToMap(deps.Laps.Status()), nil
				},
			},
			"config": &graphql.Field{
				Type:        configType,
				Description: "Hysteresis radii and action period",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					th, period := deps.Laps.Thresholds()
					return map[string]interface{}{
						"outerRadius": th.Outer,
						"innerRadius": th.Inner,
						"period":      int(period),
					}, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
}

func statusToMap(st domain.LapStatus) map[string]interface{} {
	m := map[string]interface{}{
		"lapCount":  int(st.LapCount),
		"zone":      st.Zone.String(),
		"samples":   int(st.Samples),
		"dropped":   int(st.Dropped),
		"rejected":  int(st.Rejected),
		"updatedAt": st.UpdatedAt.Format(time.RFC3339Nano),
	}
	if st.LastDistance != nil {
		m["lastDistance"] = *st.LastDistance
	}
	if st.Reference != nil {
		m["reference"] = map[string]interface{}{
			"position": map[string]interface{}{
				"lat": st.Reference.Position.Lat,
				"lon": st.Reference.Position.Lon,
			},
			"senderStamp": int(st.Reference.SenderStamp),
			"capturedAt":  st.Reference.CapturedAt.Format(time.RFC3339Nano),
		}
	}
	return m
}

// GraphQLHandler serves POST /graphql.
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
