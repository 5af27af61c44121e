package store

import (
	"context"

	"rbac-service/internal/apperr"
	"rbac-service/internal/model"
)

// Association mutation is set-valued: adding an edge that already exists is
// a no-op success, removing an edge that does not exist is a request error,
// distinct from either entity being missing.

// UserRoles returns the roles currently assigned to a user.
func (s *Store) UserRoles(ctx context.Context, appSlug, tnSlug string, userID uint) ([]model.Role, error) {
	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return nil, err
	}
	user, err := s.GetUserByID(ctx, tenant.ApplicationID, tenant.ID, userID)
	if err != nil {
		return nil, err
	}

	var roles []model.Role
	err = s.db.WithContext(ctx).Model(user).Order("roles.name").Association("Roles").Find(&roles)
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// AddRoleToUser assigns a role to a user. Both must live in the same tenant.
func (s *Store) AddRoleToUser(ctx context.Context, appSlug, tnSlug string, userID, roleID uint) error {
	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return err
	}
	user, err := s.GetUserByID(ctx, tenant.ApplicationID, tenant.ID, userID)
	if err != nil {
		return err
	}
	role, err := s.GetRoleByID(ctx, tenant.ApplicationID, tenant.ID, roleID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Table("user_roles").
		Where("user_id = ? AND role_id = ?", user.ID, role.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		// Already assigned.
		return nil
	}
	return s.db.WithContext(ctx).Model(user).Association("Roles").Append(role)
}

// RemoveRoleFromUser removes a role assignment from a user.
func (s *Store) RemoveRoleFromUser(ctx context.Context, appSlug, tnSlug string, userID, roleID uint) error {
	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return err
	}
	user, err := s.GetUserByID(ctx, tenant.ApplicationID, tenant.ID, userID)
	if err != nil {
		return err
	}
	role, err := s.GetRoleByID(ctx, tenant.ApplicationID, tenant.ID, roleID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Table("user_roles").
		Where("user_id = ? AND role_id = ?", user.ID, role.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NoAssociation()
	}
	return s.db.WithContext(ctx).Model(user).Association("Roles").Delete(role)
}

// ReplaceUserRoles replaces the full role set of a user. All referenced
// roles must exist within the tenant.
func (s *Store) ReplaceUserRoles(ctx context.Context, appSlug, tnSlug string, userID uint, roleIDs []uint) ([]model.Role, error) {
	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return nil, err
	}
	user, err := s.GetUserByID(ctx, tenant.ApplicationID, tenant.ID, userID)
	if err != nil {
		return nil, err
	}

	roles := make([]model.Role, 0, len(roleIDs))
	for _, id := range roleIDs {
		role, err := s.GetRoleByID(ctx, tenant.ApplicationID, tenant.ID, id)
		if err != nil {
			return nil, err
		}
		roles = append(roles, *role)
	}

	if err := s.db.WithContext(ctx).Model(user).Association("Roles").Replace(&roles); err != nil {
		return nil, err
	}
	return roles, nil
}

// RolePermissions returns the permissions currently assigned to a role.
func (s *Store) RolePermissions(ctx context.Context, appSlug, tnSlug string, roleID uint) ([]model.Permission, error) {
	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return nil, err
	}
	role, err := s.GetRoleByID(ctx, tenant.ApplicationID, tenant.ID, roleID)
	if err != nil {
		return nil, err
	}

	var perms []model.Permission
	err = s.db.WithContext(ctx).Model(role).Order("permissions.name").Association("Permissions").Find(&perms)
	if err != nil {
		return nil, err
	}
	return perms, nil
}

// AddPermissionToRole assigns a permission to a role.
func (s *Store) AddPermissionToRole(ctx context.Context, appSlug, tnSlug string, roleID, permID uint) error {
	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return err
	}
	role, err := s.GetRoleByID(ctx, tenant.ApplicationID, tenant.ID, roleID)
	if err != nil {
		return err
	}
	perm, err := s.GetPermissionByID(ctx, tenant.ApplicationID, tenant.ID, permID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Table("role_permissions").
		Where("role_id = ? AND permission_id = ?", role.ID, perm.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.db.WithContext(ctx).Model(role).Association("Permissions").Append(perm)
}

// RemovePermissionFromRole removes a permission assignment from a role.
func (s *Store) RemovePermissionFromRole(ctx context.Context, appSlug, tnSlug string, roleID, permID uint) error {
	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return err
	}
	role, err := s.GetRoleByID(ctx, tenant.ApplicationID, tenant.ID, roleID)
	if err != nil {
		return err
	}
	perm, err := s.GetPermissionByID(ctx, tenant.ApplicationID, tenant.ID, permID)
	if err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Table("role_permissions").
		Where("role_id = ? AND permission_id = ?", role.ID, perm.ID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperr.NoAssociation()
	}
	return s.db.WithContext(ctx).Model(role).Association("Permissions").Delete(perm)
}

// ReplaceRolePermissions replaces the full permission set of a role.
func (s *Store) ReplaceRolePermissions(ctx context.Context, appSlug, tnSlug string, roleID uint, permIDs []uint) ([]model.Permission, error) {
	tenant, err := s.GetTenant(ctx, appSlug, tnSlug)
	if err != nil {
		return nil, err
	}
	role, err := s.GetRoleByID(ctx, tenant.ApplicationID, tenant.ID, roleID)
	if err != nil {
		return nil, err
	}

	perms := make([]model.Permission, 0, len(permIDs))
	for _, id := range permIDs {
		perm, err := s.GetPermissionByID(ctx, tenant.ApplicationID, tenant.ID, id)
		if err != nil {
			return nil, err
		}
		perms = append(perms, *perm)
	}

	if err := s.db.WithContext(ctx).Model(role).Association("Permissions").Replace(&perms); err != nil {
		return nil, err
	}
	return perms, nil
}
