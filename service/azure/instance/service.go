package azureinstance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/compute/armcompute/v5"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v5"

	"github.com/yuanzhangdck/azure-glass/model"
	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
	azureinfra "github.com/yuanzhangdck/azure-glass/service/azure/infra"
)

const (
	defaultSize     = "Standard_B1s"
	defaultUsername = "azureuser"
	osDiskSizeGB    = 64
)

// defaultImage is Ubuntu 20.04 LTS gen2.
var defaultImage = model.ImageReference{
	Publisher: "Canonical",
	Offer:     "0001-com-ubuntu-server-focal",
	SKU:       "20_04-lts-gen2",
	Version:   "latest",
}

// defaultSKUTargets are the burstable sizes the panel surfaces when no
// explicit size filter is given.
var defaultSKUTargets = []string{"standard_b1s", "standard_b2s", "standard_b2pts_v2", "standard_b2ats_v2"}

func NewService(api azureapi.AzureAPI, infra azureinfra.InfraService, logger *slog.Logger) *service {
	return &service{
		api:    api,
		infra:  infra,
		logger: logger,
		nowMs:  func() int64 { return time.Now().UnixMilli() },
	}
}

// Create implements azureinstance.InstanceService. Steps are strictly
// sequential because each needs an identifier from the previous one:
// infra, public IP(s), NIC, then the VM itself. The VM creation is not
// awaited.
func (s *service) Create(ctx context.Context, req model.CreateInstanceRequest) (model.Acceptance, error) {
	if req.Name == "" || req.Location == "" {
		return model.Acceptance{}, &model.ValidationError{Message: "missing name/location"}
	}

	bundle, err := s.infra.Ensure(ctx, req.Location, req.IPv6)
	if err != nil {
		return model.Acceptance{}, err
	}

	pip, err := s.api.CreatePublicIP(ctx, bundle.ResourceGroup, req.Name+"-pip", armnetwork.PublicIPAddress{
		Location: to.Ptr(req.Location),
		SKU:      &armnetwork.PublicIPAddressSKU{Name: to.Ptr(armnetwork.PublicIPAddressSKUNameStandard)},
		Properties: &armnetwork.PublicIPAddressPropertiesFormat{
			PublicIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodStatic),
		},
	})
	if err != nil {
		return model.Acceptance{}, &model.ProviderError{Err: err}
	}

	ipConfigs := []*armnetwork.InterfaceIPConfiguration{{
		Name: to.Ptr("ipconfig1"),
		Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
			Subnet:                    &armnetwork.Subnet{ID: to.Ptr(bundle.SubnetID)},
			PublicIPAddress:           &armnetwork.PublicIPAddress{ID: pip.ID},
			PrivateIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodDynamic),
			Primary:                   to.Ptr(true),
		},
	}}

	if req.IPv6 {
		pipV6, err := s.api.CreatePublicIP(ctx, bundle.ResourceGroup, req.Name+"-pip-v6", armnetwork.PublicIPAddress{
			Location: to.Ptr(req.Location),
			SKU:      &armnetwork.PublicIPAddressSKU{Name: to.Ptr(armnetwork.PublicIPAddressSKUNameStandard)},
			Properties: &armnetwork.PublicIPAddressPropertiesFormat{
				PublicIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodStatic),
				PublicIPAddressVersion:   to.Ptr(armnetwork.IPVersionIPv6),
			},
		})
		if err != nil {
			return model.Acceptance{}, &model.ProviderError{Err: err}
		}
		ipConfigs = append(ipConfigs, &armnetwork.InterfaceIPConfiguration{
			Name: to.Ptr("ipconfig-v6"),
			Properties: &armnetwork.InterfaceIPConfigurationPropertiesFormat{
				Subnet:                    &armnetwork.Subnet{ID: to.Ptr(bundle.SubnetID)},
				PublicIPAddress:           &armnetwork.PublicIPAddress{ID: pipV6.ID},
				PrivateIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodDynamic),
				PrivateIPAddressVersion:   to.Ptr(armnetwork.IPVersionIPv6),
			},
		})
	}

	nic, err := s.api.UpdateInterface(ctx, bundle.ResourceGroup, req.Name+"-nic", armnetwork.Interface{
		Location: to.Ptr(req.Location),
		Properties: &armnetwork.InterfacePropertiesFormat{
			IPConfigurations: ipConfigs,
		},
	})
	if err != nil {
		return model.Acceptance{}, &model.ProviderError{Err: err}
	}

	if err := s.api.BeginCreateVM(ctx, bundle.ResourceGroup, req.Name, s.vmParams(req, nic.ID)); err != nil {
		return model.Acceptance{}, &model.ProviderError{Err: err}
	}

	s.logger.Info("VM creation accepted", "name", req.Name, "region", req.Location, "spot", req.Spot, "ipv6", req.IPv6)
	return model.Acceptance{Operation: "create", Accepted: true}, nil
}

func (s *service) vmParams(req model.CreateInstanceRequest, nicID *string) armcompute.VirtualMachine {
	size := req.Size
	if size == "" {
		size = defaultSize
	}
	username := req.Username
	if username == "" {
		username = defaultUsername
	}
	image := defaultImage
	if req.Image != nil {
		image = *req.Image
	}

	props := &armcompute.VirtualMachineProperties{
		HardwareProfile: &armcompute.HardwareProfile{
			VMSize: to.Ptr(armcompute.VirtualMachineSizeTypes(size)),
		},
		StorageProfile: &armcompute.StorageProfile{
			ImageReference: &armcompute.ImageReference{
				Publisher: to.Ptr(image.Publisher),
				Offer:     to.Ptr(image.Offer),
				SKU:       to.Ptr(image.SKU),
				Version:   to.Ptr(image.Version),
			},
			OSDisk: &armcompute.OSDisk{
				CreateOption: to.Ptr(armcompute.DiskCreateOptionTypesFromImage),
				ManagedDisk: &armcompute.ManagedDiskParameters{
					StorageAccountType: to.Ptr(armcompute.StorageAccountTypesStandardSSDLRS),
				},
				DiskSizeGB:   to.Ptr[int32](osDiskSizeGB),
				DeleteOption: to.Ptr(armcompute.DiskDeleteOptionTypesDelete),
			},
		},
		OSProfile: &armcompute.OSProfile{
			ComputerName:  to.Ptr(req.Name),
			AdminUsername: to.Ptr(username),
			AdminPassword: to.Ptr(req.Password),
		},
		NetworkProfile: &armcompute.NetworkProfile{
			NetworkInterfaces: []*armcompute.NetworkInterfaceReference{{
				ID: nicID,
				Properties: &armcompute.NetworkInterfaceReferenceProperties{
					DeleteOption: to.Ptr(armcompute.DeleteOptionsDelete),
				},
			}},
		},
	}

	if req.Spot {
		props.Priority = to.Ptr(armcompute.VirtualMachinePriorityTypesSpot)
		props.EvictionPolicy = to.Ptr(armcompute.VirtualMachineEvictionPolicyTypesDeallocate)
		// -1 opts into the current spot price with no cap.
		props.BillingProfile = &armcompute.BillingProfile{MaxPrice: to.Ptr(-1.0)}
	} else {
		props.Priority = to.Ptr(armcompute.VirtualMachinePriorityTypesRegular)
	}

	return armcompute.VirtualMachine{
		Location:   to.Ptr(req.Location),
		Properties: props,
	}
}

// List implements azureinstance.InstanceService. A failed NIC or
// public IP lookup never aborts the listing; the affected instance
// gets placeholder addresses instead.
func (s *service) List(ctx context.Context) ([]model.Instance, error) {
	vms, err := s.api.ListAllVMs(ctx)
	if err != nil {
		return nil, &model.ProviderError{Err: err}
	}

	instances := make([]model.Instance, 0, len(vms))
	for _, vm := range vms {
		if vm == nil || vm.ID == nil {
			continue
		}

		inst := model.Instance{
			ResourceGroup: extractResourceGroup(*vm.ID),
			PublicIP:      model.IPNone,
			PublicIPv6:    model.IPNone,
		}
		if vm.Name != nil {
			inst.Name = *vm.Name
		}
		if vm.Location != nil {
			inst.Location = *vm.Location
		}
		if vm.Properties != nil {
			if vm.Properties.ProvisioningState != nil {
				inst.ProvisioningState = *vm.Properties.ProvisioningState
			}
			if vm.Properties.HardwareProfile != nil && vm.Properties.HardwareProfile.VMSize != nil {
				inst.Size = string(*vm.Properties.HardwareProfile.VMSize)
			}
		}

		s.resolveAddresses(ctx, vm, &inst)
		instances = append(instances, inst)
	}
	return instances, nil
}

func (s *service) resolveAddresses(ctx context.Context, vm *armcompute.VirtualMachine, inst *model.Instance) {
	if vm.Properties == nil || vm.Properties.NetworkProfile == nil ||
		len(vm.Properties.NetworkProfile.NetworkInterfaces) == 0 {
		return
	}
	nicRef := vm.Properties.NetworkProfile.NetworkInterfaces[0]
	if nicRef.ID == nil {
		return
	}

	nicRG := extractResourceGroup(*nicRef.ID)
	nicName := extractResourceName(*nicRef.ID)

	nic, err := s.api.GetInterface(ctx, nicRG, nicName)
	if err != nil {
		s.logger.Warn("failed to fetch NIC", "nic", nicName, "error", err)
		inst.PublicIP = model.IPUnresolved
		inst.PublicIPv6 = model.IPUnresolved
		return
	}
	if nic.Properties == nil {
		return
	}

	for _, cfg := range nic.Properties.IPConfigurations {
		if cfg == nil || cfg.Properties == nil || cfg.Properties.PublicIPAddress == nil ||
			cfg.Properties.PublicIPAddress.ID == nil {
			continue
		}
		pipID := *cfg.Properties.PublicIPAddress.ID
		pipRG := extractResourceGroup(pipID)
		pipName := extractResourceName(pipID)

		pip, err := s.api.GetPublicIP(ctx, pipRG, pipName)
		if err != nil {
			s.logger.Warn("failed to fetch public IP", "pip", pipName, "error", err)
			continue
		}

		address := "Allocating..."
		if pip.Properties != nil && pip.Properties.IPAddress != nil {
			address = *pip.Properties.IPAddress
		}

		if isIPv6Address(pip, pipName) {
			if inst.PublicIPv6 == model.IPNone {
				inst.PublicIPv6 = address
			}
		} else if inst.PublicIP == model.IPNone {
			inst.PublicIP = address
		}
	}
}

// isIPv6Address classifies by the declared address version, falling
// back to a name-substring heuristic for legacy addresses that lack
// the version field.
func isIPv6Address(pip armnetwork.PublicIPAddress, name string) bool {
	if pip.Properties != nil && pip.Properties.PublicIPAddressVersion != nil {
		return *pip.Properties.PublicIPAddressVersion == armnetwork.IPVersionIPv6
	}
	return strings.Contains(name, "v6")
}

// Start implements azureinstance.InstanceService.
func (s *service) Start(ctx context.Context, resourceGroup, name string) (model.Acceptance, error) {
	if err := s.api.BeginStartVM(ctx, resourceGroup, name); err != nil {
		return model.Acceptance{}, &model.ProviderError{Err: err}
	}
	return model.Acceptance{Operation: "start", Accepted: true}, nil
}

// Stop implements azureinstance.InstanceService, deallocating so
// compute billing stops.
func (s *service) Stop(ctx context.Context, resourceGroup, name string) (model.Acceptance, error) {
	if err := s.api.BeginDeallocateVM(ctx, resourceGroup, name); err != nil {
		return model.Acceptance{}, &model.ProviderError{Err: err}
	}
	return model.Acceptance{Operation: "stop", Accepted: true}, nil
}

// Delete implements azureinstance.InstanceService. The NIC and OS disk
// were created with delete-with-VM semantics, so they go too.
func (s *service) Delete(ctx context.Context, resourceGroup, name string) (model.Acceptance, error) {
	if err := s.api.BeginDeleteVM(ctx, resourceGroup, name); err != nil {
		return model.Acceptance{}, &model.ProviderError{Err: err}
	}
	return model.Acceptance{Operation: "delete", Accepted: true}, nil
}

// ChangeIPv4 implements azureinstance.InstanceService.
func (s *service) ChangeIPv4(ctx context.Context, resourceGroup, name string) (string, error) {
	return s.rotateIP(ctx, resourceGroup, name, false)
}

// ChangeIPv6 implements azureinstance.InstanceService. Fails with
// ConfigNotFoundError when the instance was created without
// dual-stack support.
func (s *service) ChangeIPv6(ctx context.Context, resourceGroup, name string) (string, error) {
	return s.rotateIP(ctx, resourceGroup, name, true)
}

// rotateIP swaps the public address of the matching family on the
// VM's primary NIC. Unlike the lifecycle actions this awaits the
// rebind so it can return the concrete new address; existing sessions
// to the old address are severed.
func (s *service) rotateIP(ctx context.Context, resourceGroup, name string, ipv6 bool) (string, error) {
	vm, err := s.api.GetVM(ctx, resourceGroup, name)
	if err != nil {
		return "", &model.ProviderError{Err: err}
	}
	if vm.Properties == nil || vm.Properties.NetworkProfile == nil ||
		len(vm.Properties.NetworkProfile.NetworkInterfaces) == 0 ||
		vm.Properties.NetworkProfile.NetworkInterfaces[0].ID == nil {
		return "", &model.ProviderError{Err: fmt.Errorf("VM %s has no NIC", name)}
	}

	nicName := extractResourceName(*vm.Properties.NetworkProfile.NetworkInterfaces[0].ID)
	nic, err := s.api.GetInterface(ctx, resourceGroup, nicName)
	if err != nil {
		return "", &model.ProviderError{Err: err}
	}

	ipConfig := findIPConfig(nic, ipv6)
	if ipConfig == nil {
		family := "IPv4"
		if ipv6 {
			family = "IPv6"
		}
		return "", &model.ConfigNotFoundError{Family: family}
	}

	var oldPipID string
	if ipConfig.Properties.PublicIPAddress != nil && ipConfig.Properties.PublicIPAddress.ID != nil {
		oldPipID = *ipConfig.Properties.PublicIPAddress.ID
	}

	suffix := fmt.Sprintf("%d", s.nowMs())
	suffix = suffix[len(suffix)-4:]
	newPipName := fmt.Sprintf("%s-pip-%s", name, suffix)
	pipProps := &armnetwork.PublicIPAddressPropertiesFormat{
		PublicIPAllocationMethod: to.Ptr(armnetwork.IPAllocationMethodStatic),
	}
	if ipv6 {
		newPipName = fmt.Sprintf("%s-pip-v6-%s", name, suffix)
		pipProps.PublicIPAddressVersion = to.Ptr(armnetwork.IPVersionIPv6)
	}

	location := ""
	if vm.Location != nil {
		location = *vm.Location
	}
	newPip, err := s.api.CreatePublicIP(ctx, resourceGroup, newPipName, armnetwork.PublicIPAddress{
		Location:   to.Ptr(location),
		SKU:        &armnetwork.PublicIPAddressSKU{Name: to.Ptr(armnetwork.PublicIPAddressSKUNameStandard)},
		Properties: pipProps,
	})
	if err != nil {
		return "", &model.ProviderError{Err: err}
	}

	ipConfig.Properties.PublicIPAddress = &armnetwork.PublicIPAddress{ID: newPip.ID}
	if _, err := s.api.UpdateInterface(ctx, resourceGroup, nicName, nic); err != nil {
		return "", &model.ProviderError{Err: err}
	}

	// Best-effort cleanup: the rotation already succeeded, so a failed
	// delete only leaves an orphaned address behind.
	if oldPipID != "" {
		oldName := extractResourceName(oldPipID)
		if err := s.api.BeginDeletePublicIP(ctx, resourceGroup, oldName); err != nil {
			s.logger.Warn("failed to delete old public IP", "pip", oldName, "error", err)
		}
	}

	newAddress := ""
	if newPip.Properties != nil && newPip.Properties.IPAddress != nil {
		newAddress = *newPip.Properties.IPAddress
	}
	return newAddress, nil
}

// findIPConfig locates the IP configuration for the requested address
// family: IPv4 configs have no explicit version or IPv4; IPv6 configs
// declare it.
func findIPConfig(nic armnetwork.Interface, ipv6 bool) *armnetwork.InterfaceIPConfiguration {
	if nic.Properties == nil {
		return nil
	}
	for _, cfg := range nic.Properties.IPConfigurations {
		if cfg == nil || cfg.Properties == nil {
			continue
		}
		version := cfg.Properties.PrivateIPAddressVersion
		if ipv6 {
			if version != nil && *version == armnetwork.IPVersionIPv6 {
				return cfg
			}
		} else {
			if version == nil || *version == armnetwork.IPVersionIPv4 {
				return cfg
			}
		}
	}
	return nil
}

// ListSKUs implements azureinstance.InstanceService, reporting
// regional availability and restrictions for the target VM sizes.
func (s *service) ListSKUs(ctx context.Context, size string) ([]model.SKUInfo, error) {
	targets := defaultSKUTargets
	if size = strings.TrimSpace(strings.ToLower(size)); size != "" {
		targets = []string{size}
	}

	skus, err := s.api.ListSKUs(ctx)
	if err != nil {
		return nil, &model.ProviderError{Err: err}
	}

	var result []model.SKUInfo
	for _, sku := range skus {
		if sku == nil || sku.Name == nil || sku.ResourceType == nil || *sku.ResourceType != "virtualMachines" {
			continue
		}
		if !contains(targets, strings.ToLower(*sku.Name)) {
			continue
		}

		info := model.SKUInfo{Name: *sku.Name}
		if sku.Tier != nil {
			info.Tier = *sku.Tier
		}
		for _, loc := range sku.Locations {
			if loc != nil {
				info.Locations = append(info.Locations, *loc)
			}
		}
		for _, r := range sku.Restrictions {
			if r == nil || r.Type == nil || *r.Type != armcompute.ResourceSKURestrictionsTypeLocation {
				continue
			}
			for _, v := range r.Values {
				if v != nil {
					info.RestrictedLocations = append(info.RestrictedLocations, *v)
				}
			}
		}
		result = append(result, info)
	}
	return result, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// extractResourceName returns the trailing segment of an Azure
// resource id.
func extractResourceName(resourceID string) string {
	parts := strings.Split(resourceID, "/")
	return parts[len(parts)-1]
}

// extractResourceGroup pulls the resource group out of an Azure
// resource id.
func extractResourceGroup(resourceID string) string {
	parts := strings.Split(resourceID, "/")
	for i, part := range parts {
		if strings.EqualFold(part, "resourceGroups") && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
