// Package bootstrap converges the database to a minimum operable baseline:
// the management application and tenant, a super-user, a super-role and the
// permission catalog, with all associations in place. It runs once at
// process start, before the service accepts traffic.
package bootstrap

import (
	"context"

	"gorm.io/gorm"

	"rbac-service/internal/model"
)

// Params are the inputs of the convergence procedure. The password is the
// opaque hash produced by the credential verifier, never the plaintext.
type Params struct {
	AppSlug      string
	TenantSlug   string
	SuperUser    string
	PasswordHash string
	SuperRole    string
	// Perms maps each permission name to its human description.
	Perms map[string]string
}

// PermResult pairs a resolved permission with its newly-created flag.
type PermResult struct {
	Perm *model.Permission
	New  bool
}

// Result reports what EnsureBaseline found or created. The New flags exist
// for logging and telemetry only; callers must not branch on them.
type Result struct {
	App       *model.Application
	AppNew    bool
	Tenant    *model.Tenant
	TenantNew bool
	User      *model.User
	UserNew   bool
	Role      *model.Role
	RoleNew   bool
	Perms     map[string]PermResult
	NewPerms  bool
}

// EnsureBaseline makes sure the baseline rows exist and are associated,
// creating whatever is absent. All writes happen in one transaction; a
// second invocation with identical parameters changes nothing.
//
// Children are only probed when their parent pre-existed: the model has no
// way to create a child without its parent, so a freshly created parent
// implies every descendant is absent. This skip is a precondition of the
// procedure, not an incidental shortcut.
//
// Two processes racing to bootstrap the same empty database are not
// supported; run the procedure from exactly one process, or treat a losing
// process's startup failure as fatal.
func EnsureBaseline(ctx context.Context, db *gorm.DB, params Params) (*Result, error) {
	res := &Result{Perms: make(map[string]PermResult, len(params.Perms))}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Ensure that the application exists.
		app, created, err := ensureApp(tx, params.AppSlug)
		if err != nil {
			return err
		}
		res.App, res.AppNew = app, created

		// Ensure that the tenant exists. Probe only if the application
		// pre-existed.
		tenant, created, err := ensureTenant(tx, app, params.TenantSlug, !res.AppNew)
		if err != nil {
			return err
		}
		res.Tenant, res.TenantNew = tenant, created

		probe := !res.TenantNew

		// Ensure that the super-user exists.
		user, created, err := ensureUser(tx, tenant, params.SuperUser, params.PasswordHash, probe)
		if err != nil {
			return err
		}
		res.User, res.UserNew = user, created

		// Ensure that the super-role exists.
		role, created, err := ensureRole(tx, tenant, params.SuperRole, probe)
		if err != nil {
			return err
		}
		res.Role, res.RoleNew = role, created

		// Go through each permission and ensure it exists.
		for name, description := range params.Perms {
			perm, created, err := ensurePerm(tx, tenant, name, description, probe)
			if err != nil {
				return err
			}
			res.Perms[name] = PermResult{Perm: perm, New: created}
			if created {
				res.NewPerms = true
			}
		}

		// The user must have the role and the role must have every
		// permission, no matter what already existed. Appends are
		// idempotent on the join tables.
		if err := ensureUserRole(tx, user.ID, role.ID); err != nil {
			return err
		}
		for _, pr := range res.Perms {
			if err := ensureRolePerm(tx, role.ID, pr.Perm.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func ensureApp(tx *gorm.DB, slug string) (*model.Application, bool, error) {
	var app model.Application
	err := tx.Where("slug = ?", slug).Limit(1).Find(&app).Error
	if err != nil {
		return nil, false, err
	}
	if app.ID != 0 {
		return &app, false, nil
	}
	app = model.Application{Slug: slug}
	if err := tx.Create(&app).Error; err != nil {
		return nil, false, err
	}
	return &app, true, nil
}

func ensureTenant(tx *gorm.DB, app *model.Application, slug string, probe bool) (*model.Tenant, bool, error) {
	if probe {
		var tenant model.Tenant
		err := tx.Where("slug = ? AND application_id = ?", slug, app.ID).
			Limit(1).Find(&tenant).Error
		if err != nil {
			return nil, false, err
		}
		if tenant.ID != 0 {
			return &tenant, false, nil
		}
	}
	tenant := model.Tenant{Slug: slug, ApplicationID: app.ID}
	if err := tx.Create(&tenant).Error; err != nil {
		return nil, false, err
	}
	return &tenant, true, nil
}

func ensureUser(tx *gorm.DB, tenant *model.Tenant, name, passwordHash string, probe bool) (*model.User, bool, error) {
	if probe {
		var user model.User
		err := tx.Where("name = ? AND tenant_id = ?", name, tenant.ID).
			Limit(1).Find(&user).Error
		if err != nil {
			return nil, false, err
		}
		if user.ID != 0 {
			return &user, false, nil
		}
	}
	user := model.User{Name: name, TenantID: tenant.ID, Password: &passwordHash}
	if err := tx.Create(&user).Error; err != nil {
		return nil, false, err
	}
	return &user, true, nil
}

func ensureRole(tx *gorm.DB, tenant *model.Tenant, name string, probe bool) (*model.Role, bool, error) {
	if probe {
		var role model.Role
		err := tx.Where("name = ? AND tenant_id = ?", name, tenant.ID).
			Limit(1).Find(&role).Error
		if err != nil {
			return nil, false, err
		}
		if role.ID != 0 {
			return &role, false, nil
		}
	}
	role := model.Role{Name: name, TenantID: tenant.ID}
	if err := tx.Create(&role).Error; err != nil {
		return nil, false, err
	}
	return &role, true, nil
}

func ensurePerm(tx *gorm.DB, tenant *model.Tenant, name, description string, probe bool) (*model.Permission, bool, error) {
	if probe {
		var perm model.Permission
		err := tx.Where("name = ? AND tenant_id = ?", name, tenant.ID).
			Limit(1).Find(&perm).Error
		if err != nil {
			return nil, false, err
		}
		if perm.ID != 0 {
			return &perm, false, nil
		}
	}
	perm := model.Permission{Name: name, TenantID: tenant.ID, Description: description}
	if err := tx.Create(&perm).Error; err != nil {
		return nil, false, err
	}
	return &perm, true, nil
}

func ensureUserRole(tx *gorm.DB, userID, roleID uint) error {
	var count int64
	if err := tx.Table("user_roles").
		Where("user_id = ? AND role_id = ?", userID, roleID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Exec("INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)", userID, roleID).Error
}

func ensureRolePerm(tx *gorm.DB, roleID, permID uint) error {
	var count int64
	if err := tx.Table("role_permissions").
		Where("role_id = ? AND permission_id = ?", roleID, permID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return tx.Exec("INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)", roleID, permID).Error
}
