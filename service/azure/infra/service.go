package azureinfra

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/network/armnetwork/v5"

	"github.com/yuanzhangdck/azure-glass/model"
	azureapi "github.com/yuanzhangdck/azure-glass/service/azure/api"
)

const (
	subnetName = "default"

	vnetAddressSpace   = "10.0.0.0/16"
	subnetPrefix       = "10.0.0.0/24"
	vnetAddressSpaceV6 = "ace:cab:deca::/48"
	subnetPrefixV6     = "ace:cab:deca::/64"
)

func NewService(subscriptionID string, api azureapi.AzureAPI, logger *slog.Logger) *service {
	return &service{
		subscriptionID: subscriptionID,
		api:            api,
		logger:         logger,
	}
}

// Ensure implements azureinfra.InfraService. Check-then-create for the
// resource group; declarative upserts for the security group and
// virtual network, so re-invocation with the same region converges to
// the same definition without duplicates.
func (s *service) Ensure(ctx context.Context, region string, enableIPv6 bool) (Bundle, error) {
	vnetName := fmt.Sprintf("vnet-%s", region)
	nsgName := fmt.Sprintf("nsg-%s", region)

	exists, err := s.api.ResourceGroupExists(ctx, ResourceGroupName)
	if err != nil {
		return Bundle{}, &model.InfrastructureError{Step: "resource group check", Err: err}
	}
	if !exists {
		s.logger.Info("creating resource group", "name", ResourceGroupName, "region", region)
		if err := s.api.EnsureResourceGroup(ctx, ResourceGroupName, region); err != nil {
			return Bundle{}, &model.InfrastructureError{Step: "resource group create", Err: err}
		}
	}

	s.logger.Info("ensuring security group", "name", nsgName)
	nsg, err := s.api.EnsureSecurityGroup(ctx, ResourceGroupName, nsgName, securityGroupParams(region))
	if err != nil {
		return Bundle{}, &model.InfrastructureError{Step: "security group", Err: err}
	}

	s.logger.Info("ensuring virtual network", "name", vnetName, "ipv6", enableIPv6)
	if err := s.api.EnsureVirtualNetwork(ctx, ResourceGroupName, vnetName, vnetParams(region, enableIPv6, nsg.ID)); err != nil {
		return Bundle{}, &model.InfrastructureError{Step: "virtual network", Err: err}
	}

	// Subnet id by name composition; no extra read needed.
	subnetID := fmt.Sprintf("/subscriptions/%s/resourceGroups/%s/providers/Microsoft.Network/virtualNetworks/%s/subnets/%s",
		s.subscriptionID, ResourceGroupName, vnetName, subnetName)

	return Bundle{
		ResourceGroup: ResourceGroupName,
		SubnetID:      subnetID,
		Region:        region,
	}, nil
}

// securityGroupParams grants unrestricted inbound traffic, with a
// distinct rule for IPv6. Both rules are always present; re-applying
// them is a no-op in effect.
func securityGroupParams(region string) armnetwork.SecurityGroup {
	return armnetwork.SecurityGroup{
		Location: to.Ptr(region),
		Properties: &armnetwork.SecurityGroupPropertiesFormat{
			SecurityRules: []*armnetwork.SecurityRule{
				{
					Name: to.Ptr("Allow-All-Inbound"),
					Properties: &armnetwork.SecurityRulePropertiesFormat{
						Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocolAsterisk),
						SourcePortRange:          to.Ptr("*"),
						DestinationPortRange:     to.Ptr("*"),
						SourceAddressPrefix:      to.Ptr("*"),
						DestinationAddressPrefix: to.Ptr("*"),
						Access:                   to.Ptr(armnetwork.SecurityRuleAccessAllow),
						Priority:                 to.Ptr[int32](1000),
						Direction:                to.Ptr(armnetwork.SecurityRuleDirectionInbound),
					},
				},
				{
					Name: to.Ptr("Allow-All-Inbound-v6"),
					Properties: &armnetwork.SecurityRulePropertiesFormat{
						Protocol:                 to.Ptr(armnetwork.SecurityRuleProtocolAsterisk),
						SourcePortRange:          to.Ptr("*"),
						DestinationPortRange:     to.Ptr("*"),
						SourceAddressPrefix:      to.Ptr("*"),
						DestinationAddressPrefix: to.Ptr("*"),
						Access:                   to.Ptr(armnetwork.SecurityRuleAccessAllow),
						Priority:                 to.Ptr[int32](1001),
						Direction:                to.Ptr(armnetwork.SecurityRuleDirectionInbound),
					},
				},
			},
		},
	}
}

// vnetParams declares the full network definition. With IPv6 the
// default subnet switches to dual-stack prefixes instead of the single
// IPv4 prefix.
func vnetParams(region string, enableIPv6 bool, nsgID *string) armnetwork.VirtualNetwork {
	subnet := &armnetwork.Subnet{
		Name: to.Ptr(subnetName),
		Properties: &armnetwork.SubnetPropertiesFormat{
			NetworkSecurityGroup: &armnetwork.SecurityGroup{ID: nsgID},
		},
	}
	addressPrefixes := []*string{to.Ptr(vnetAddressSpace)}

	if enableIPv6 {
		addressPrefixes = append(addressPrefixes, to.Ptr(vnetAddressSpaceV6))
		subnet.Properties.AddressPrefixes = []*string{to.Ptr(subnetPrefix), to.Ptr(subnetPrefixV6)}
	} else {
		subnet.Properties.AddressPrefix = to.Ptr(subnetPrefix)
	}

	return armnetwork.VirtualNetwork{
		Location: to.Ptr(region),
		Properties: &armnetwork.VirtualNetworkPropertiesFormat{
			AddressSpace: &armnetwork.AddressSpace{AddressPrefixes: addressPrefixes},
			Subnets:      []*armnetwork.Subnet{subnet},
		},
	}
}
