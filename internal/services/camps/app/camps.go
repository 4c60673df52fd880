package app

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	camps "github.com/louisbranch/camptrack/internal/services/camps/domain"
	notifications "github.com/louisbranch/camptrack/internal/services/notifications/domain"
	"github.com/louisbranch/camptrack/internal/services/notifications/render"
)

// CreateCamp adds a camp.
func (s *Service) CreateCamp(ctx context.Context, input camps.CreateInput) (camp camps.Camp, err error) {
	ctx, done := s.start(ctx, "CreateCamp", attribute.String("camp", input.Name))
	defer done(&err)

	camp, err = s.registry.Create(ctx, input)
	if err != nil {
		return camps.Camp{}, err
	}
	s.logger.Info("camp created",
		zap.String("camp", camp.Name),
		zap.Stringer("type", camp.Type),
		zap.String("start", camps.FormatDate(camp.StartDate)),
		zap.String("end", camps.FormatDate(camp.EndDate)),
	)
	s.notify(ctx, event{
		topic:    render.TopicCampCreated,
		level:    notifications.LevelSuccess,
		category: CategoryCamp,
		payload:  render.Payload{Camp: camp.Name, Date: camps.FormatDate(camp.StartDate)},
	})
	return camp, nil
}

// DeleteCamp removes a camp and with it every leader assignment to it.
func (s *Service) DeleteCamp(ctx context.Context, name string) (err error) {
	ctx, done := s.start(ctx, "DeleteCamp", attribute.String("camp", name))
	defer done(&err)

	camp, err := s.registry.Get(name)
	if err != nil {
		return err
	}
	if err := s.registry.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info("camp deleted", zap.String("camp", camp.Name), zap.Strings("leaders", camp.ScoutLeaders))
	s.notify(ctx, event{
		topic:    render.TopicCampDeleted,
		level:    notifications.LevelInfo,
		category: CategoryCamp,
		payload:  render.Payload{Camp: camp.Name},
	})
	return nil
}

// UpdateCamp edits a camp's name, location, type, dates, food stock or pay
// rate.
func (s *Service) UpdateCamp(ctx context.Context, name string, input camps.UpdateInput) (camp camps.Camp, err error) {
	ctx, done := s.start(ctx, "UpdateCamp", attribute.String("camp", name))
	defer done(&err)

	camp, err = s.registry.Update(ctx, name, input)
	if err != nil {
		return camps.Camp{}, err
	}
	s.logger.Info("camp updated",
		zap.String("camp", name),
		zap.String("name", camp.Name),
		zap.Stringer("type", camp.Type),
		zap.String("start", camps.FormatDate(camp.StartDate)),
		zap.String("end", camps.FormatDate(camp.EndDate)),
	)
	s.notify(ctx, event{
		topic:    render.TopicCampUpdated,
		level:    notifications.LevelInfo,
		category: CategoryCamp,
		payload: render.Payload{
			Camp:    camp.Name,
			Date:    camps.FormatDate(camp.StartDate),
			EndDate: camps.FormatDate(camp.EndDate),
		},
	})
	return camp, nil
}

// SetFoodStock sets a camp's absolute food stock.
func (s *Service) SetFoodStock(ctx context.Context, name string, value int) (camp camps.Camp, err error) {
	ctx, done := s.start(ctx, "SetFoodStock", attribute.String("camp", name), attribute.Int("value", value))
	defer done(&err)

	camp, err = s.registry.SetFoodStock(ctx, name, value)
	if err != nil {
		return camps.Camp{}, err
	}
	s.logger.Info("food stock set", zap.String("camp", camp.Name), zap.Int("stock", camp.FoodStock))
	s.notify(ctx, event{
		topic:    render.TopicFoodStockSet,
		level:    notifications.LevelInfo,
		category: CategoryFood,
		payload:  render.Payload{Camp: camp.Name, Stock: camp.FoodStock},
	})
	return camp, nil
}

// TopUpFood adds to a camp's food stock.
func (s *Service) TopUpFood(ctx context.Context, name string, delta int) (camp camps.Camp, err error) {
	ctx, done := s.start(ctx, "TopUpFood", attribute.String("camp", name), attribute.Int("delta", delta))
	defer done(&err)

	camp, err = s.registry.TopUpFood(ctx, name, delta)
	if err != nil {
		return camps.Camp{}, err
	}
	s.logger.Info("food topped up", zap.String("camp", camp.Name), zap.Int("delta", delta), zap.Int("stock", camp.FoodStock))
	s.notify(ctx, event{
		topic:    render.TopicFoodToppedUp,
		level:    notifications.LevelSuccess,
		category: CategoryFood,
		payload:  render.Payload{Camp: camp.Name, Amount: delta, Stock: camp.FoodStock},
	})
	return camp, nil
}

// SetPayRate sets a camp's daily pay rate.
func (s *Service) SetPayRate(ctx context.Context, name string, value int) (camp camps.Camp, err error) {
	ctx, done := s.start(ctx, "SetPayRate", attribute.String("camp", name), attribute.Int("value", value))
	defer done(&err)

	camp, err = s.registry.SetPayRate(ctx, name, value)
	if err != nil {
		return camps.Camp{}, err
	}
	s.logger.Info("pay rate set", zap.String("camp", camp.Name), zap.Int("pay_rate", camp.PayRate))
	return camp, nil
}

// RecordActivity logs an activity and debits its food from the camp stock.
func (s *Service) RecordActivity(ctx context.Context, input camps.RecordActivityInput) (activity camps.Activity, err error) {
	ctx, done := s.start(ctx, "RecordActivity", attribute.String("camp", input.Camp))
	defer done(&err)

	activity, err = s.registry.RecordActivity(ctx, input)
	if err != nil {
		return camps.Activity{}, err
	}
	s.logger.Info("activity recorded",
		zap.String("camp", input.Camp),
		zap.String("id", activity.ID),
		zap.Int("food_units", activity.FoodUnits),
	)
	if activity.FoodUnits > 0 {
		camp, _ := s.registry.Get(input.Camp)
		s.notify(ctx, event{
			topic:    render.TopicFoodUsed,
			level:    notifications.LevelInfo,
			category: CategoryFood,
			payload: render.Payload{
				Camp:   camp.Name,
				Amount: activity.FoodUnits,
				Date:   camps.FormatDate(input.Date),
				Stock:  camp.FoodStock,
			},
		})
	}
	return activity, nil
}

// DeleteActivity removes an activity and credits its food back.
func (s *Service) DeleteActivity(ctx context.Context, campName string, date time.Time, activityID string) (activity camps.Activity, err error) {
	ctx, done := s.start(ctx, "DeleteActivity", attribute.String("camp", campName), attribute.String("id", activityID))
	defer done(&err)

	activity, err = s.registry.DeleteActivity(ctx, campName, date, activityID)
	if err != nil {
		return camps.Activity{}, err
	}
	s.logger.Info("activity deleted", zap.String("camp", campName), zap.String("id", activityID))
	return activity, nil
}

// RecordIncident logs an incident.
func (s *Service) RecordIncident(ctx context.Context, input camps.RecordIncidentInput) (incident camps.Incident, err error) {
	ctx, done := s.start(ctx, "RecordIncident", attribute.String("camp", input.Camp))
	defer done(&err)

	incident, err = s.registry.RecordIncident(ctx, input)
	if err != nil {
		return camps.Incident{}, err
	}
	s.logger.Info("incident recorded", zap.String("camp", input.Camp), zap.String("id", incident.ID))
	s.notify(ctx, event{
		topic:    render.TopicIncidentReported,
		level:    notifications.LevelAlert,
		category: CategoryIncident,
		payload:  render.Payload{Camp: input.Camp, Date: incident.Date, Description: incident.Description},
	})
	return incident, nil
}

// DeleteIncident removes an incident.
func (s *Service) DeleteIncident(ctx context.Context, campName, incidentID string) (incident camps.Incident, err error) {
	ctx, done := s.start(ctx, "DeleteIncident", attribute.String("camp", campName), attribute.String("id", incidentID))
	defer done(&err)

	incident, err = s.registry.DeleteIncident(ctx, campName, incidentID)
	if err != nil {
		return camps.Incident{}, err
	}
	s.logger.Info("incident deleted", zap.String("camp", campName), zap.String("id", incidentID))
	return incident, nil
}

// ListCamps returns every camp in registry order.
func (s *Service) ListCamps(ctx context.Context) []camps.Camp {
	_, done := s.start(ctx, "ListCamps")
	defer done(nil)
	return s.registry.List()
}

// GetCamp returns one camp.
func (s *Service) GetCamp(ctx context.Context, name string) (camp camps.Camp, err error) {
	_, done := s.start(ctx, "GetCamp", attribute.String("camp", name))
	defer done(&err)
	return s.registry.Get(name)
}

// AssignCampers adds campers to a camp and returns those actually added.
func (s *Service) AssignCampers(ctx context.Context, name string, campers []string) (added []string, err error) {
	ctx, done := s.start(ctx, "AssignCampers", attribute.String("camp", name))
	defer done(&err)

	added, err = s.registry.AssignCampers(ctx, name, campers)
	if err != nil {
		return nil, err
	}
	s.logger.Info("campers assigned", zap.String("camp", name), zap.Strings("added", added))
	if len(added) > 0 {
		s.notify(ctx, event{
			topic:    render.TopicCampersAssigned,
			level:    notifications.LevelInfo,
			category: CategoryCampers,
			payload:  render.Payload{Camp: name, Campers: added},
		})
	}
	return added, nil
}

// CheckFoodShortage compares stock with a required amount. A shortage raises
// an ALERT notification.
func (s *Service) CheckFoodShortage(ctx context.Context, name string, required int) (shortage camps.FoodShortage, err error) {
	ctx, done := s.start(ctx, "CheckFoodShortage", attribute.String("camp", name), attribute.Int("required", required))
	defer done(&err)

	shortage, err = s.registry.CheckFoodShortage(name, required)
	if err != nil {
		return camps.FoodShortage{}, err
	}
	if shortage.Short {
		s.logger.Warn("food shortage", zap.String("camp", shortage.Camp), zap.Int("stock", shortage.Stock), zap.Int("required", required))
		s.notify(ctx, event{
			topic:    render.TopicFoodShortage,
			level:    notifications.LevelAlert,
			category: CategoryFood,
			payload:  render.Payload{Camp: shortage.Camp, Stock: shortage.Stock, Required: required},
		})
	}
	return shortage, nil
}

// Dashboard returns one summary row per camp.
func (s *Service) Dashboard(ctx context.Context) []camps.Summary {
	_, done := s.start(ctx, "Dashboard")
	defer done(nil)
	return s.registry.Summaries()
}
