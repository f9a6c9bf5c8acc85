package supervisor

import "simlaunch/pkg/proc"

// LaunchPlan is the immutable set of children to launch, computed once from
// the command-line mode flags.
type LaunchPlan struct {
	RunServer bool
	RunGUI    bool
}

// ResolvePlan decides which children to launch. Server-only wins over
// GUI-only when both flags are set; with neither set, both run.
func ResolvePlan(serverOnly, guiOnly bool) LaunchPlan {
	switch {
	case serverOnly:
		return LaunchPlan{RunServer: true}
	case guiOnly:
		return LaunchPlan{RunGUI: true}
	default:
		return LaunchPlan{RunServer: true, RunGUI: true}
	}
}

// Roles returns the planned roles in launch order: server first, GUI second.
func (p LaunchPlan) Roles() []proc.Role {
	roles := make([]proc.Role, 0, 2)
	if p.RunServer {
		roles = append(roles, proc.RoleServer)
	}
	if p.RunGUI {
		roles = append(roles, proc.RoleGUI)
	}
	return roles
}

func (p LaunchPlan) String() string {
	switch {
	case p.RunServer && p.RunGUI:
		return "server+gui"
	case p.RunServer:
		return "server"
	case p.RunGUI:
		return "gui"
	default:
		return "none"
	}
}
