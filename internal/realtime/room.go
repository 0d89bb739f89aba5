package realtime

import (
	"github.com/cliffordobure/daycare-sub000/internal/authz"
	"github.com/cliffordobure/daycare-sub000/internal/model"
)

// Room 广播分组
type Room string

// 固定房间
const (
	RoomGlobal   Room = "global"
	RoomAdmins   Room = "admins"
	RoomTeachers Room = "teachers"
	RoomParents  Room = "parents"
)

func RoleRoom(role string) Room { return Room("role:" + role) }
func CenterRoom(id string) Room { return Room("center:" + id) }
func ClassRoom(id string) Room { return Room("class:" + id) }
func ChildRoom(id string) Room { return Room("child:" + id) }
func UserRoom(id string) Room { return Room("user:" + id) }

// InterestRooms 连接建立时加入的房间
//
// 结果是连接时刻的快照：之后的分班、家长关系或角色变化不会同步到已建立的连接，
// 客户端重连后才会加入新房间。
func InterestRooms(a *authz.Actor) []Room {
	if a == nil || a.UserID == "" {
		return nil
	}
	rooms := newRoomSet()
	rooms.add(RoomGlobal)
	rooms.add(RoleRoom(a.Role))
	if a.CenterID != "" {
		rooms.add(CenterRoom(a.CenterID))
	}

	switch a.Role {
	case model.RoleAdmin:
		rooms.add(RoomAdmins)
	case model.RoleTeacher:
		rooms.add(RoomTeachers)
		for _, id := range a.AssignedClassIDs {
			rooms.add(ClassRoom(id))
		}
	case model.RoleParent:
		rooms.add(RoomParents)
		for _, id := range a.ChildIDs {
			rooms.add(ChildRoom(id))
		}
		for _, id := range a.ChildClassIDs {
			rooms.add(ClassRoom(id))
		}
	}

	rooms.add(UserRoom(a.UserID))
	return rooms.list
}

// roomSet 保持插入顺序的去重集合
type roomSet struct {
	seen map[Room]bool
	list []Room
}

func newRoomSet() *roomSet {
	return &roomSet{seen: make(map[Room]bool)}
}

func (s *roomSet) add(r Room) {
	if r == "" || s.seen[r] {
		return
	}
	s.seen[r] = true
	s.list = append(s.list, r)
}
