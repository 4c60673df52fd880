package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
)

// CampService is the registry half of the CampTrack service.
type CampService interface {
	CreateCamp(ctx context.Context, input camps.CreateInput) (camps.Camp, error)
	UpdateCamp(ctx context.Context, name string, input camps.UpdateInput) (camps.Camp, error)
	DeleteCamp(ctx context.Context, name string) error
	SetFoodStock(ctx context.Context, name string, value int) (camps.Camp, error)
	TopUpFood(ctx context.Context, name string, delta int) (camps.Camp, error)
	SetPayRate(ctx context.Context, name string, value int) (camps.Camp, error)
	RecordActivity(ctx context.Context, input camps.RecordActivityInput) (camps.Activity, error)
	DeleteActivity(ctx context.Context, camp string, date time.Time, activityID string) (camps.Activity, error)
	RecordIncident(ctx context.Context, input camps.RecordIncidentInput) (camps.Incident, error)
	DeleteIncident(ctx context.Context, camp, incidentID string) (camps.Incident, error)
	ListCamps(ctx context.Context) []camps.Camp
	GetCamp(ctx context.Context, name string) (camps.Camp, error)
	AssignCampers(ctx context.Context, name string, campers []string) ([]string, error)
	CheckFoodShortage(ctx context.Context, name string, required int) (camps.FoodShortage, error)
	Dashboard(ctx context.Context) []camps.Summary
}

// CampResult is the MCP view of a camp.
type CampResult struct {
	Name           string                      `json:"name" jsonschema:"unique camp name"`
	Location       string                      `json:"location" jsonschema:"camp location"`
	Type           string                      `json:"type" jsonschema:"camp type (Day, Overnight, Multi-day)"`
	StartDate      string                      `json:"start_date" jsonschema:"first day (YYYY-MM-DD)"`
	EndDate        string                      `json:"end_date" jsonschema:"last day (YYYY-MM-DD)"`
	Nights         int                         `json:"nights" jsonschema:"number of nights"`
	FoodStock      int                         `json:"food_stock" jsonschema:"food units in stock"`
	PayRate        int                         `json:"pay_rate" jsonschema:"daily leader pay rate"`
	ScoutLeaders   []string                    `json:"scout_leaders" jsonschema:"assigned leaders"`
	Campers        []string                    `json:"campers" jsonschema:"assigned campers"`
	Activities     map[string][]camps.Activity `json:"activities,omitempty" jsonschema:"activities keyed by date"`
	Incidents      []camps.Incident            `json:"incidents,omitempty" jsonschema:"reported incidents"`
	DailyFoodUsage map[string]int              `json:"daily_food_usage,omitempty" jsonschema:"food units used keyed by date"`
}

func campResult(c camps.Camp) CampResult {
	return CampResult{
		Name:           c.Name,
		Location:       c.Location,
		Type:           c.Type.String(),
		StartDate:      camps.FormatDate(c.StartDate),
		EndDate:        camps.FormatDate(c.EndDate),
		Nights:         c.Nights(),
		FoodStock:      c.FoodStock,
		PayRate:        c.PayRate,
		ScoutLeaders:   nonNil(c.ScoutLeaders),
		Campers:        nonNil(c.Campers),
		Activities:     c.Activities,
		Incidents:      c.Incidents,
		DailyFoodUsage: c.DailyFoodUsage,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// CampCreateInput represents the MCP tool input for camp creation.
type CampCreateInput struct {
	Name      string `json:"name" jsonschema:"unique camp name"`
	Location  string `json:"location,omitempty" jsonschema:"camp location"`
	Type      string `json:"type" jsonschema:"camp type: day, overnight or multi-day"`
	StartDate string `json:"start_date" jsonschema:"first day (YYYY-MM-DD)"`
	Nights    int    `json:"nights,omitempty" jsonschema:"nights for multi-day camps (at least 2)"`
	FoodStock int    `json:"food_stock,omitempty" jsonschema:"initial food units"`
	PayRate   int    `json:"pay_rate,omitempty" jsonschema:"daily leader pay rate"`
}

// CampUpdateInput edits a camp. Omitted fields keep their current value.
type CampUpdateInput struct {
	Name      string  `json:"name" jsonschema:"current camp name"`
	NewName   *string `json:"new_name,omitempty" jsonschema:"new unique camp name"`
	Location  *string `json:"location,omitempty" jsonschema:"camp location"`
	Type      *string `json:"type,omitempty" jsonschema:"camp type: day, overnight or multi-day"`
	StartDate *string `json:"start_date,omitempty" jsonschema:"first day (YYYY-MM-DD)"`
	Nights    *int    `json:"nights,omitempty" jsonschema:"nights for multi-day camps; the current length is kept when omitted"`
	FoodStock *int    `json:"food_stock,omitempty" jsonschema:"food units in stock"`
	PayRate   *int    `json:"pay_rate,omitempty" jsonschema:"daily leader pay rate"`
}

// CampNameInput addresses one camp by name.
type CampNameInput struct {
	Name string `json:"name" jsonschema:"camp name"`
}

// CampAmountInput sets or adjusts an integer camp field.
type CampAmountInput struct {
	Name   string `json:"name" jsonschema:"camp name"`
	Amount int    `json:"amount" jsonschema:"non-negative amount"`
}

// CampDeleteResult reports a deleted camp.
type CampDeleteResult struct {
	Name    string `json:"name" jsonschema:"deleted camp name"`
	Deleted bool   `json:"deleted" jsonschema:"true when the camp was removed"`
}

// CampListResult lists camps in registry order. Scheduling tools address
// camps by their index in this list.
type CampListResult struct {
	Camps []CampResult `json:"camps" jsonschema:"camps in registry order"`
}

// ActivityRecordInput represents the MCP tool input for logging an activity.
type ActivityRecordInput struct {
	Camp      string   `json:"camp" jsonschema:"camp name"`
	Date      string   `json:"date" jsonschema:"camp day (YYYY-MM-DD)"`
	Name      string   `json:"name,omitempty" jsonschema:"activity name"`
	Time      string   `json:"time,omitempty" jsonschema:"time of day (HH:MM)"`
	Notes     string   `json:"notes,omitempty" jsonschema:"free text notes"`
	FoodUnits int      `json:"food_units,omitempty" jsonschema:"food units consumed, debited from stock"`
	Campers   []string `json:"campers,omitempty" jsonschema:"campers taking part"`
}

// ActivityDeleteInput removes a logged activity.
type ActivityDeleteInput struct {
	Camp string `json:"camp" jsonschema:"camp name"`
	Date string `json:"date" jsonschema:"camp day (YYYY-MM-DD)"`
	ID   string `json:"id" jsonschema:"activity identifier"`
}

// ActivityResult reports a logged or removed activity.
type ActivityResult struct {
	Camp     string         `json:"camp" jsonschema:"camp name"`
	Date     string         `json:"date" jsonschema:"camp day"`
	Activity camps.Activity `json:"activity" jsonschema:"activity entry"`
}

// IncidentRecordInput represents the MCP tool input for reporting an incident.
type IncidentRecordInput struct {
	Camp        string   `json:"camp" jsonschema:"camp name"`
	Date        string   `json:"date" jsonschema:"camp day (YYYY-MM-DD)"`
	Time        string   `json:"time,omitempty" jsonschema:"time of day (HH:MM)"`
	Description string   `json:"description" jsonschema:"what happened"`
	Campers     []string `json:"campers,omitempty" jsonschema:"campers involved"`
}

// IncidentDeleteInput removes a reported incident.
type IncidentDeleteInput struct {
	Camp string `json:"camp" jsonschema:"camp name"`
	ID   string `json:"id" jsonschema:"incident identifier"`
}

// IncidentResult reports a logged or removed incident.
type IncidentResult struct {
	Camp     string         `json:"camp" jsonschema:"camp name"`
	Incident camps.Incident `json:"incident" jsonschema:"incident entry"`
}

// CampersAssignInput adds campers to a camp.
type CampersAssignInput struct {
	Camp    string   `json:"camp" jsonschema:"camp name"`
	Campers []string `json:"campers" jsonschema:"camper identifiers"`
}

// CampersAssignResult lists the campers actually added.
type CampersAssignResult struct {
	Camp  string   `json:"camp" jsonschema:"camp name"`
	Added []string `json:"added" jsonschema:"campers added; others were present or busy elsewhere"`
}

// FoodShortageInput asks whether a camp has enough food.
type FoodShortageInput struct {
	Camp     string `json:"camp" jsonschema:"camp name"`
	Required int    `json:"required" jsonschema:"food units required"`
}

// FoodShortageResult reports the comparison.
type FoodShortageResult struct {
	Camp     string `json:"camp" jsonschema:"camp name"`
	Stock    int    `json:"stock" jsonschema:"food units in stock"`
	Required int    `json:"required" jsonschema:"food units required"`
	Short    bool   `json:"short" jsonschema:"true when stock is below required"`
}

// EmptyInput is the input of tools that take no arguments.
type EmptyInput struct{}

// DashboardRow is one camp summary.
type DashboardRow struct {
	Camp       string `json:"camp"`
	Campers    int    `json:"campers"`
	Leaders    int    `json:"leaders"`
	FoodStock  int    `json:"food_stock"`
	Engagement int    `json:"engagement" jsonschema:"activities plus incidents logged"`
}

// DashboardResult lists one summary per camp.
type DashboardResult struct {
	Rows []DashboardRow `json:"rows"`
}

// CampCreateTool defines the MCP tool schema for creating camps.
func CampCreateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "camp_create",
		Description: "Creates a camp; the end date follows from the type and nights",
	}
}

// CampUpdateTool defines the MCP tool schema for editing camps.
func CampUpdateTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "camp_update",
		Description: "Edits a camp; refused when new dates would put a leader on two overlapping camps",
	}
}

// CampDeleteTool defines the MCP tool schema for deleting camps.
func CampDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "camp_delete",
		Description: "Deletes a camp and with it every leader assignment to it",
	}
}

// CampGetTool defines the MCP tool schema for reading one camp.
func CampGetTool() *mcp.Tool {
	return &mcp.Tool{Name: "camp_get", Description: "Returns one camp with its logbook"}
}

// CampListTool defines the MCP tool schema for listing camps.
func CampListTool() *mcp.Tool {
	return &mcp.Tool{Name: "camp_list", Description: "Lists camps in registry order"}
}

// FoodStockSetTool defines the MCP tool schema for setting food stock.
func FoodStockSetTool() *mcp.Tool {
	return &mcp.Tool{Name: "food_stock_set", Description: "Sets a camp's absolute food stock"}
}

// FoodTopUpTool defines the MCP tool schema for topping up food.
func FoodTopUpTool() *mcp.Tool {
	return &mcp.Tool{Name: "food_top_up", Description: "Adds food units to a camp's stock"}
}

// PayRateSetTool defines the MCP tool schema for setting the pay rate.
func PayRateSetTool() *mcp.Tool {
	return &mcp.Tool{Name: "pay_rate_set", Description: "Sets a camp's daily leader pay rate"}
}

// ActivityRecordTool defines the MCP tool schema for logging activities.
func ActivityRecordTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "activity_record",
		Description: "Logs an activity on a camp day and debits its food units from stock",
	}
}

// ActivityDeleteTool defines the MCP tool schema for removing activities.
func ActivityDeleteTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "activity_delete",
		Description: "Removes a logged activity and credits its food units back",
	}
}

// IncidentRecordTool defines the MCP tool schema for reporting incidents.
func IncidentRecordTool() *mcp.Tool {
	return &mcp.Tool{Name: "incident_record", Description: "Reports an incident at a camp"}
}

// IncidentDeleteTool defines the MCP tool schema for removing incidents.
func IncidentDeleteTool() *mcp.Tool {
	return &mcp.Tool{Name: "incident_delete", Description: "Removes a reported incident"}
}

// CampersAssignTool defines the MCP tool schema for assigning campers.
func CampersAssignTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "campers_assign",
		Description: "Adds campers to a camp, skipping those already attending an overlapping camp",
	}
}

// FoodShortageTool defines the MCP tool schema for shortage checks.
func FoodShortageTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        "food_shortage_check",
		Description: "Compares a camp's food stock with a required amount and raises an alert when short",
	}
}

// DashboardTool defines the MCP tool schema for the camp dashboard.
func DashboardTool() *mcp.Tool {
	return &mcp.Tool{Name: "dashboard", Description: "Summarises campers, leaders, food and engagement per camp"}
}

// CampCreateHandler executes a camp create request.
func CampCreateHandler(svc CampService) mcp.ToolHandlerFor[CampCreateInput, CampResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampCreateInput) (*mcp.CallToolResult, CampResult, error) {
		campType, err := camps.ParseCampType(input.Type)
		if err != nil {
			return nil, CampResult{}, err
		}
		start, err := camps.ParseDate(input.StartDate)
		if err != nil {
			return nil, CampResult{}, err
		}
		camp, err := svc.CreateCamp(ctx, camps.CreateInput{
			Name:      input.Name,
			Location:  input.Location,
			Type:      campType,
			StartDate: start,
			Nights:    input.Nights,
			FoodStock: input.FoodStock,
			PayRate:   input.PayRate,
		})
		if err != nil {
			return nil, CampResult{}, fmt.Errorf("camp create failed: %w", err)
		}
		return nil, campResult(camp), nil
	}
}

// CampUpdateHandler executes a camp update request.
func CampUpdateHandler(svc CampService) mcp.ToolHandlerFor[CampUpdateInput, CampResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampUpdateInput) (*mcp.CallToolResult, CampResult, error) {
		update := camps.UpdateInput{
			Name:      input.NewName,
			Location:  input.Location,
			Nights:    input.Nights,
			FoodStock: input.FoodStock,
			PayRate:   input.PayRate,
		}
		if input.Type != nil {
			campType, err := camps.ParseCampType(*input.Type)
			if err != nil {
				return nil, CampResult{}, err
			}
			update.Type = &campType
		}
		if input.StartDate != nil {
			start, err := camps.ParseDate(*input.StartDate)
			if err != nil {
				return nil, CampResult{}, err
			}
			update.StartDate = &start
		}
		camp, err := svc.UpdateCamp(ctx, input.Name, update)
		if err != nil {
			return nil, CampResult{}, fmt.Errorf("camp update failed: %w", err)
		}
		return nil, campResult(camp), nil
	}
}

// CampDeleteHandler executes a camp delete request.
func CampDeleteHandler(svc CampService) mcp.ToolHandlerFor[CampNameInput, CampDeleteResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampNameInput) (*mcp.CallToolResult, CampDeleteResult, error) {
		if err := svc.DeleteCamp(ctx, input.Name); err != nil {
			return nil, CampDeleteResult{}, fmt.Errorf("camp delete failed: %w", err)
		}
		return nil, CampDeleteResult{Name: input.Name, Deleted: true}, nil
	}
}

// CampGetHandler returns one camp.
func CampGetHandler(svc CampService) mcp.ToolHandlerFor[CampNameInput, CampResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampNameInput) (*mcp.CallToolResult, CampResult, error) {
		camp, err := svc.GetCamp(ctx, input.Name)
		if err != nil {
			return nil, CampResult{}, err
		}
		return nil, campResult(camp), nil
	}
}

// CampListHandler lists camps.
func CampListHandler(svc CampService) mcp.ToolHandlerFor[EmptyInput, CampListResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, CampListResult, error) {
		list := svc.ListCamps(ctx)
		result := CampListResult{Camps: make([]CampResult, 0, len(list))}
		for _, camp := range list {
			result.Camps = append(result.Camps, campResult(camp))
		}
		return nil, result, nil
	}
}

// FoodStockSetHandler sets a camp's food stock.
func FoodStockSetHandler(svc CampService) mcp.ToolHandlerFor[CampAmountInput, CampResult] {
	return amountHandler("food stock set", svc.SetFoodStock)
}

// FoodTopUpHandler adds to a camp's food stock.
func FoodTopUpHandler(svc CampService) mcp.ToolHandlerFor[CampAmountInput, CampResult] {
	return amountHandler("food top up", svc.TopUpFood)
}

// PayRateSetHandler sets a camp's pay rate.
func PayRateSetHandler(svc CampService) mcp.ToolHandlerFor[CampAmountInput, CampResult] {
	return amountHandler("pay rate set", svc.SetPayRate)
}

func amountHandler(label string, apply func(context.Context, string, int) (camps.Camp, error)) mcp.ToolHandlerFor[CampAmountInput, CampResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampAmountInput) (*mcp.CallToolResult, CampResult, error) {
		camp, err := apply(ctx, input.Name, input.Amount)
		if err != nil {
			return nil, CampResult{}, fmt.Errorf("%s failed: %w", label, err)
		}
		return nil, campResult(camp), nil
	}
}

// ActivityRecordHandler logs an activity.
func ActivityRecordHandler(svc CampService) mcp.ToolHandlerFor[ActivityRecordInput, ActivityResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActivityRecordInput) (*mcp.CallToolResult, ActivityResult, error) {
		date, err := camps.ParseDate(input.Date)
		if err != nil {
			return nil, ActivityResult{}, err
		}
		activity, err := svc.RecordActivity(ctx, camps.RecordActivityInput{
			Camp:      input.Camp,
			Date:      date,
			Name:      input.Name,
			Time:      input.Time,
			Notes:     input.Notes,
			FoodUnits: input.FoodUnits,
			Campers:   input.Campers,
		})
		if err != nil {
			return nil, ActivityResult{}, fmt.Errorf("activity record failed: %w", err)
		}
		return nil, ActivityResult{Camp: input.Camp, Date: camps.FormatDate(date), Activity: activity}, nil
	}
}

// ActivityDeleteHandler removes an activity.
func ActivityDeleteHandler(svc CampService) mcp.ToolHandlerFor[ActivityDeleteInput, ActivityResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ActivityDeleteInput) (*mcp.CallToolResult, ActivityResult, error) {
		date, err := camps.ParseDate(input.Date)
		if err != nil {
			return nil, ActivityResult{}, err
		}
		activity, err := svc.DeleteActivity(ctx, input.Camp, date, input.ID)
		if err != nil {
			return nil, ActivityResult{}, fmt.Errorf("activity delete failed: %w", err)
		}
		return nil, ActivityResult{Camp: input.Camp, Date: camps.FormatDate(date), Activity: activity}, nil
	}
}

// IncidentRecordHandler reports an incident.
func IncidentRecordHandler(svc CampService) mcp.ToolHandlerFor[IncidentRecordInput, IncidentResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input IncidentRecordInput) (*mcp.CallToolResult, IncidentResult, error) {
		date, err := camps.ParseDate(input.Date)
		if err != nil {
			return nil, IncidentResult{}, err
		}
		incident, err := svc.RecordIncident(ctx, camps.RecordIncidentInput{
			Camp:        input.Camp,
			Date:        date,
			Time:        input.Time,
			Description: input.Description,
			Campers:     input.Campers,
		})
		if err != nil {
			return nil, IncidentResult{}, fmt.Errorf("incident record failed: %w", err)
		}
		return nil, IncidentResult{Camp: input.Camp, Incident: incident}, nil
	}
}

// IncidentDeleteHandler removes an incident.
func IncidentDeleteHandler(svc CampService) mcp.ToolHandlerFor[IncidentDeleteInput, IncidentResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input IncidentDeleteInput) (*mcp.CallToolResult, IncidentResult, error) {
		incident, err := svc.DeleteIncident(ctx, input.Camp, input.ID)
		if err != nil {
			return nil, IncidentResult{}, fmt.Errorf("incident delete failed: %w", err)
		}
		return nil, IncidentResult{Camp: input.Camp, Incident: incident}, nil
	}
}

// CampersAssignHandler assigns campers.
func CampersAssignHandler(svc CampService) mcp.ToolHandlerFor[CampersAssignInput, CampersAssignResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input CampersAssignInput) (*mcp.CallToolResult, CampersAssignResult, error) {
		added, err := svc.AssignCampers(ctx, input.Camp, input.Campers)
		if err != nil {
			return nil, CampersAssignResult{}, fmt.Errorf("campers assign failed: %w", err)
		}
		return nil, CampersAssignResult{Camp: input.Camp, Added: nonNil(added)}, nil
	}
}

// FoodShortageHandler checks a camp's stock.
func FoodShortageHandler(svc CampService) mcp.ToolHandlerFor[FoodShortageInput, FoodShortageResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input FoodShortageInput) (*mcp.CallToolResult, FoodShortageResult, error) {
		shortage, err := svc.CheckFoodShortage(ctx, input.Camp, input.Required)
		if err != nil {
			return nil, FoodShortageResult{}, err
		}
		return nil, FoodShortageResult{
			Camp:     shortage.Camp,
			Stock:    shortage.Stock,
			Required: shortage.Required,
			Short:    shortage.Short,
		}, nil
	}
}

// DashboardHandler summarises every camp.
func DashboardHandler(svc CampService) mcp.ToolHandlerFor[EmptyInput, DashboardResult] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ EmptyInput) (*mcp.CallToolResult, DashboardResult, error) {
		rows := svc.Dashboard(ctx)
		result := DashboardResult{Rows: make([]DashboardRow, 0, len(rows))}
		for _, row := range rows {
			result.Rows = append(result.Rows, DashboardRow(row))
		}
		return nil, result, nil
	}
}
