package http

import (
	"encoding/json"

	"github.com/relaychat/relaychat-server/internal/core"
	"github.com/relaychat/relaychat-server/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeAnnounce:
		return &core.Command{Kind: core.CommandAnnounce}, nil, nil
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind:         core.CommandJoinRoom,
			Room:         join.Room,
			PreviousRoom: join.PreviousRoom,
		}, nil, nil
	case proto.InboundTypeMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		if msg.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &core.Command{
			Kind:    core.CommandSendMessage,
			Room:    msg.Room,
			Content: msg.Content,
			Sender:  msg.Sender,
			Time:    msg.Time,
			Date:    msg.Date,
		}, nil, nil
	case proto.InboundTypeLogout:
		var logout proto.LogoutData
		if err := json.Unmarshal(inbound.Data, &logout); err != nil {
			return nil, nil, err
		}
		if logout.UserID == 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "user_id is required"}, nil
		}
		return &core.Command{
			Kind:        core.CommandLogout,
			UserID:      logout.UserID,
			NewMessages: logout.NewMessages,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventPresence:
		members := make([]proto.Member, 0, len(event.Users))
		for _, u := range event.Users {
			members = append(members, proto.Member{
				ID:          u.ID,
				Username:    u.Username,
				Status:      u.Status,
				NewMessages: u.NewMessages,
			})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameMembers,
			Data:  members,
		}
	case core.EventRoomHistory:
		groups := make([]proto.EventMessageGroup, 0, len(event.Groups))
		for _, g := range event.Groups {
			messages := make([]proto.EventMessage, 0, len(g.Messages))
			for _, m := range g.Messages {
				messages = append(messages, proto.EventMessage{
					ID:      m.ID,
					Room:    m.Room,
					Sender:  m.Sender,
					Content: m.Content,
					Time:    m.Time,
					Date:    m.Date,
				})
			}
			groups = append(groups, proto.EventMessageGroup{Date: g.Date, Messages: messages})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameRoomMessages,
			Data:  proto.EventRoomMessages{Room: event.Room, Groups: groups},
		}
	case core.EventNotification:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNameNotifications,
			Data:  proto.EventNotification{Room: event.Room},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
