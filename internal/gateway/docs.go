package gateway

type endpointDoc struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
	Body        string `json:"body,omitempty"`
}

type docs struct {
	Name      string        `json:"name"`
	Version   string        `json:"version"`
	Endpoints []endpointDoc `json:"endpoints"`
}

var apiDocs = docs{
	Name:    "MotorMind API",
	Version: "1.0.0",
	Endpoints: []endpointDoc{
		{Method: "GET", Path: "/api/vehicles", Description: "List every vehicle in the catalog"},
		{Method: "POST", Path: "/api/vehicles", Description: "Add a vehicle", Body: `{"model","location","color","stock","price","type"}`},
		{Method: "GET", Path: "/api/vehicles/search?q=", Description: "Find in-stock vehicles resembling a model name, most relevant first"},
		{Method: "GET", Path: "/api/vehicles/{id}", Description: "Get one vehicle"},
		{Method: "PUT", Path: "/api/vehicles/{id}", Description: "Replace a vehicle", Body: `{"model","location","color","stock","price","type?"}`},
		{Method: "DELETE", Path: "/api/vehicles/{id}", Description: "Remove a vehicle"},
		{Method: "POST", Path: "/api/buy", Description: "Take one unit of a vehicle out of stock. Send Idempotency-Key to make retries safe", Body: `{"id"}`},
		{Method: "POST", Path: "/api/agent", Description: "Resolve a free-text purchase request into an allocation, a recommendation or a reply", Body: `{"message"}`},
		{Method: "GET", Path: "/api/stock-movements?vehicle_id=&limit=", Description: "Recent stock movements, newest first"},
	},
}
